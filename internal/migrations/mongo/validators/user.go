package validators

import "go.mongodb.org/mongo-driver/bson"

var UserValidator = bson.M{
	"$jsonSchema": bson.M{
		"bsonType": "object",
		"required": []string{
			"first_name",
			"last_name",
			"email",
			"phone",
			"password_hash",
		},
		"additionalProperties": true,

		"properties": bson.M{
			"_id": bson.M{
				"bsonType": "objectId",
			},
			"first_name": bson.M{
				"bsonType":  "string",
				"minLength": 1,
				"maxLength": 50,
			},
			"last_name": bson.M{
				"bsonType":  "string",
				"minLength": 1,
				"maxLength": 50,
			},
			"email": bson.M{
				"bsonType": "string",
				"pattern":  "^[^@\\s]+@[^@\\s]+$",
			},
			"phone": bson.M{
				"bsonType": "string",
				"pattern":  "^\\+[1-9][0-9]{6,14}$",
			},
			"address": bson.M{
				"bsonType":  "string",
				"maxLength": 200,
			},
			"password_hash": bson.M{
				"bsonType":  "string",
				"minLength": 20,
			},
			"trust_score": bson.M{
				"bsonType": []string{"int", "long"},
				"minimum":  0,
				"maximum":  100,
			},
			"identity_verified": bson.M{"bsonType": "bool"},
			"is_active":         bson.M{"bsonType": "bool"},
			"created_at":        bson.M{"bsonType": "date"},
			"updated_at":        bson.M{"bsonType": "date"},
		},
	},
}
