package validators

import "go.mongodb.org/mongo-driver/bson"

var MarketplaceItemValidator = bson.M{
	"$jsonSchema": bson.M{
		"bsonType": "object",
		"required": []string{
			"title",
			"price",
			"category",
			"condition",
			"seller_ref",
			"status",
			"flags",
			"created_at",
		},
		"additionalProperties": true,

		"properties": bson.M{
			"_id": bson.M{
				"bsonType": "objectId",
			},

			"title": bson.M{
				"bsonType":  "string",
				"minLength": 3,
				"maxLength": 150,
			},

			"description": bson.M{
				"bsonType":  "string",
				"maxLength": 5000,
			},

			"price": bson.M{
				"bsonType": []string{"double", "int", "long", "decimal"},
				"minimum":  0,
			},

			"category": bson.M{
				"enum": []string{"equipment", "uniforms", "footwear", "training_gear", "goalkeeping", "accessories", "other"},
			},

			"condition": bson.M{
				"enum": []string{"new", "like_new", "good", "fair", "poor"},
			},

			"seller_ref": bson.M{
				"bsonType":  "string",
				"minLength": 1,
				"maxLength": 100,
			},

			"images": bson.M{
				"bsonType": "array",
				"maxItems": 10,
				"items":    bson.M{"bsonType": "string"},
			},

			"status": bson.M{
				"enum": []string{"pending", "approved", "rejected", "sold", "expired"},
			},

			"rejection_reason": bson.M{
				"bsonType":  "string",
				"maxLength": 500,
			},

			"flags": bson.M{
				"bsonType": "array",
				"items": bson.M{
					"bsonType": "object",
					"required": []string{"id", "reason", "flagged_at", "resolved"},
					"properties": bson.M{
						"id":                bson.M{"bsonType": "string"},
						"reason":            bson.M{"enum": []string{"spam", "inappropriate", "prohibited_item", "scam", "misleading", "duplicate", "other"}},
						"flagged_at":        bson.M{"bsonType": "date"},
						"resolved":          bson.M{"bsonType": "bool"},
						"resolution_action": bson.M{"enum": []string{"dismiss", "action"}},
					},
				},
			},

			"views": bson.M{
				"bsonType": []string{"int", "long"},
				"minimum":  0,
			},

			"favorites": bson.M{
				"bsonType": []string{"int", "long"},
				"minimum":  0,
			},

			"created_at": bson.M{
				"bsonType": "date",
			},

			"updated_at": bson.M{
				"bsonType": "date",
			},
		},
	},
}
