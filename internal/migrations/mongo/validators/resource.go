package validators

import "go.mongodb.org/mongo-driver/bson"

var weekdays = []string{"monday", "tuesday", "wednesday", "thursday", "friday", "saturday", "sunday"}

// clockPattern matches the HH:MM strings stored for times of day.
const clockPattern = "^([01][0-9]|2[0-3]):[0-5][0-9]$"

var ResourceValidator = bson.M{
	"$jsonSchema": bson.M{
		"bsonType": "object",
		"required": []string{
			"name",
			"type",
			"availability",
			"status",
			"created_at",
		},
		"additionalProperties": true,

		"properties": bson.M{
			"_id": bson.M{
				"bsonType": "objectId",
			},

			"name": bson.M{
				"bsonType":  "string",
				"minLength": 2,
				"maxLength": 100,
			},

			"type": bson.M{
				"enum": []string{"field", "indoor_facility", "gym", "room", "equipment_set", "vehicle"},
			},

			"capacity": bson.M{
				"bsonType": []string{"int", "long"},
				"minimum":  0,
				"maximum":  10000,
			},

			"availability": bson.M{
				"bsonType": "array",
				"maxItems": 7,
				"items": bson.M{
					"bsonType": "object",
					"required": []string{"day", "available"},
					"properties": bson.M{
						"day":       bson.M{"enum": weekdays},
						"available": bson.M{"bsonType": "bool"},
						"start":     bson.M{"bsonType": "string", "pattern": clockPattern},
						"end":       bson.M{"bsonType": "string", "pattern": clockPattern},
					},
				},
			},

			"status": bson.M{
				"enum": []string{"active", "inactive"},
			},

			"location": bson.M{
				"bsonType":  "string",
				"maxLength": 200,
			},

			"description": bson.M{
				"bsonType":  "string",
				"maxLength": 1000,
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
