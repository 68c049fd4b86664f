package model

import "time"

// BookingLock is an advisory lock document held while a booking is being
// created for one item. Its _id is derived from the item id so a second
// holder fails on the unique index. Token identifies one acquisition, and
// only the holder of that token may release the lock.
type BookingLock struct {
	ID        string    `bson:"_id" json:"id"`
	ItemID    string    `bson:"item_id" json:"item_id"`
	Token     string    `bson:"token" json:"-"`
	ExpiresAt time.Time `bson:"expires_at" json:"expires_at"`
	CreatedAt time.Time `bson:"created_at" json:"created_at"`
}

func BookingLockID(itemID string) string {
	return "booking_lock_" + itemID
}
