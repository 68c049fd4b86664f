package validators

import "go.mongodb.org/mongo-driver/bson"

var ItemValidator = bson.M{
	"$jsonSchema": bson.M{
		"bsonType": "object",
		"required": []string{
			"title",
			"description",
			"category",
			"price_per_day",
			"location",
			"owner_id",
			"status",
		},
		"additionalProperties": true,

		"properties": bson.M{
			"_id": bson.M{
				"bsonType": "objectId",
			},

			"title": bson.M{
				"bsonType":  "string",
				"minLength": 3,
				"maxLength": 100,
			},

			"description": bson.M{
				"bsonType":  "string",
				"minLength": 10,
				"maxLength": 1000,
			},

			"category": bson.M{
				"enum": []string{"outils", "high-tech", "loisirs", "maison", "sport", "vehicules", "autres"},
			},

			"price_per_day": money,
			"deposit":       money,

			"images": bson.M{
				"bsonType": "array",
				"maxItems": 10,
				"items": bson.M{
					"bsonType": "object",
					"required": []string{"url"},
				},
			},

			"location": bson.M{
				"bsonType": "object",
				"required": []string{"city"},
				"properties": bson.M{
					"city": bson.M{
						"bsonType":  "string",
						"minLength": 2,
						"maxLength": 100,
					},
				},
			},

			"owner_id": objectIDString,

			"features": bson.M{
				"bsonType": "array",
				"maxItems": 20,
				"items":    bson.M{"bsonType": "string"},
			},

			"condition": bson.M{
				"enum": []string{"neuf", "tres-bon-etat", "bon-etat", "etat-correct"},
			},

			"status": bson.M{
				"enum": []string{"active", "inactive", "rented"},
			},

			"rental_count": bson.M{"bsonType": []string{"int", "long"}, "minimum": 0},
			"views":        bson.M{"bsonType": []string{"int", "long"}, "minimum": 0},
			"created_at":   bson.M{"bsonType": "date"},
			"updated_at":   bson.M{"bsonType": "date"},
		},
	},
}
