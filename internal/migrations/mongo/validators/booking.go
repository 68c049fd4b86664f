package validators

import "go.mongodb.org/mongo-driver/bson"

var objectIDString = bson.M{
	"bsonType":  "string",
	"minLength": 24,
	"maxLength": 24,
}

var money = bson.M{
	"bsonType": []string{"double", "int", "long", "decimal"},
	"minimum":  0,
}

var BookingValidator = bson.M{
	"$jsonSchema": bson.M{
		"bsonType": "object",
		"required": []string{
			"item_id",
			"renter_id",
			"owner_id",
			"dates",
			"pricing",
			"status",
			"created_at",
		},
		"additionalProperties": true,

		"properties": bson.M{
			"_id": bson.M{
				"bsonType": "objectId",
			},

			"item_id":   objectIDString,
			"renter_id": objectIDString,
			"owner_id":  objectIDString,

			"dates": bson.M{
				"bsonType": "object",
				"required": []string{"start_date", "end_date", "total_days"},
				"properties": bson.M{
					"start_date": bson.M{"bsonType": "date"},
					"end_date":   bson.M{"bsonType": "date"},
					"total_days": bson.M{
						"bsonType": []string{"int", "long"},
						"minimum":  1,
					},
				},
			},

			"pricing": bson.M{
				"bsonType": "object",
				"required": []string{"price_per_day", "total_price", "service_fee", "total_amount"},
				"properties": bson.M{
					"price_per_day": money,
					"total_price":   money,
					"deposit":       money,
					"service_fee":   money,
					"total_amount":  money,
				},
			},

			"status": bson.M{
				"enum":        []string{"pending", "confirmed", "active", "completed", "cancelled", "rejected"},
				"description": "Booking lifecycle status",
			},

			"cancellation_reason": bson.M{
				"bsonType":  "string",
				"maxLength": 500,
			},

			"messages": bson.M{
				"bsonType": "array",
				"items": bson.M{
					"bsonType": "object",
					"required": []string{"sender_id", "message", "timestamp"},
					"properties": bson.M{
						"sender_id": objectIDString,
						"message": bson.M{
							"bsonType":  "string",
							"minLength": 1,
							"maxLength": 1000,
						},
						"timestamp": bson.M{"bsonType": "date"},
					},
				},
			},

			"review": bson.M{
				"bsonType": "object",
				"properties": bson.M{
					"rating": bson.M{
						"bsonType": []string{"int", "long"},
						"minimum":  1,
						"maximum":  5,
					},
				},
			},

			"created_at": bson.M{"bsonType": "date"},
			"updated_at": bson.M{"bsonType": "date"},
		},
	},
}

var BookingLockValidator = bson.M{
	"$jsonSchema": bson.M{
		"bsonType": "object",
		"required": []string{"_id", "item_id", "token", "expires_at"},
		"properties": bson.M{
			"_id":        bson.M{"bsonType": "string"},
			"item_id":    objectIDString,
			"token":      bson.M{"bsonType": "string", "minLength": 1},
			"expires_at": bson.M{"bsonType": "date"},
			"created_at": bson.M{"bsonType": "date"},
		},
	},
}
