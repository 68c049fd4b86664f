package repository

import (
	"testing"
	"time"

	"locmaroc/pkg/model"

	"github.com/stretchr/testify/assert"
)

func TestProfileSet_OnlyProvidedFields(t *testing.T) {
	first, address := "Omar", ""
	set := ProfileSet(&model.ProfileUpdate{FirstName: &first, Address: &address})

	assert.Equal(t, "Omar", set["first_name"])
	assert.Equal(t, "", set["address"], "an empty address clears it")
	assert.NotContains(t, set, "last_name")
	assert.NotContains(t, set, "phone")
	assert.NotContains(t, set, "email")
	assert.NotContains(t, set, "password_hash")
	assert.WithinDuration(t, time.Now().UTC(), set["updated_at"].(time.Time), time.Second)
}
