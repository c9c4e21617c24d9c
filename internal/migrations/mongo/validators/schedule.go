package validators

import "go.mongodb.org/mongo-driver/bson"

const datePattern = "^[0-9]{4}-[0-9]{2}-[0-9]{2}$"

var ScheduleValidator = bson.M{
	"$jsonSchema": bson.M{
		"bsonType": "object",
		"required": []string{
			"title",
			"type",
			"team",
			"date",
			"start_time",
			"end_time",
			"visibility",
			"status",
			"created_at",
		},
		"additionalProperties": true,

		"properties": bson.M{
			"_id": bson.M{
				"bsonType": "objectId",
			},

			"title": bson.M{
				"bsonType":  "string",
				"minLength": 2,
				"maxLength": 200,
			},

			"type": bson.M{
				"enum": []string{"practice", "match", "training", "event", "meeting", "tryout", "camp", "maintenance", "other"},
			},

			"team": bson.M{
				"bsonType":  "string",
				"minLength": 1,
				"maxLength": 100,
			},

			"date": bson.M{
				"bsonType": "string",
				"pattern":  datePattern,
			},

			"start_time": bson.M{
				"bsonType": "string",
				"pattern":  clockPattern,
			},

			"end_time": bson.M{
				"bsonType": "string",
				"pattern":  clockPattern,
			},

			"duration": bson.M{
				"bsonType": []string{"int", "long"},
				"minimum":  0,
				"maximum":  1440,
			},

			"resource_id": bson.M{
				"bsonType":  "string",
				"minLength": 24,
				"maxLength": 24,
			},

			"visibility": bson.M{
				"enum": []string{"public", "members_only", "internal"},
			},

			"status": bson.M{
				"enum": []string{"confirmed", "tentative", "cancelled"},
			},

			"recurrence": bson.M{
				"bsonType": "object",
				"required": []string{"pattern", "end_date"},
				"properties": bson.M{
					"pattern":  bson.M{"enum": []string{"daily", "weekly", "biweekly", "monthly"}},
					"end_date": bson.M{"bsonType": "string", "pattern": datePattern},
				},
			},

			"location": bson.M{
				"bsonType":  "string",
				"maxLength": 200,
			},

			"notes": bson.M{
				"bsonType":  "string",
				"maxLength": 2000,
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
