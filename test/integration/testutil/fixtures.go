package testutil

import (
	"fmt"
	"net/http"
	"sync/atomic"
	"testing"

	"locmaroc/pkg/model"
)

var userSeq atomic.Int64

// RegisterUser creates a fresh account and returns a client acting as it.
func RegisterUser(t *testing.T, c *Client, firstName string) (*Client, *model.User) {
	t.Helper()

	n := userSeq.Add(1)
	resp := c.POST(t, "/api/v1/auth/register", model.RegisterRequest{
		FirstName: firstName,
		LastName:  "Test",
		Email:     fmt.Sprintf("%s.%d@example.ma", firstName, n),
		Phone:     fmt.Sprintf("+2126%08d", n),
		Password:  "secret123",
	})
	AssertStatusCode(t, resp, http.StatusCreated)

	var auth model.AuthResponse
	resp.Data(t, &auth)
	return c.As(auth.Token), auth.User
}

type ItemBuilder struct {
	item model.Item
}

func NewItemBuilder() *ItemBuilder {
	return &ItemBuilder{
		item: model.Item{
			Title:       "Perceuse Bosch",
			Description: "Perceuse à percussion avec deux batteries.",
			Category:    "outils",
			PricePerDay: 100,
			Deposit:     500,
			Location:    model.Location{City: "Casablanca"},
		},
	}
}

func (b *ItemBuilder) WithTitle(title string) *ItemBuilder {
	b.item.Title = title
	return b
}

func (b *ItemBuilder) WithPrice(pricePerDay float64) *ItemBuilder {
	b.item.PricePerDay = pricePerDay
	return b
}

func (b *ItemBuilder) WithCity(city string) *ItemBuilder {
	b.item.Location.City = city
	return b
}

func (b *ItemBuilder) Build() model.Item {
	return b.item
}

// CreateItem publishes an item as the owner behind c.
func CreateItem(t *testing.T, c *Client, item model.Item) *model.Item {
	t.Helper()

	resp := c.POST(t, "/api/v1/items", item)
	AssertStatusCode(t, resp, http.StatusCreated)

	var created model.Item
	resp.Data(t, &created)
	return &created
}

func BookingRequest(itemID, start, end string) model.BookingRequest {
	return model.BookingRequest{
		ItemID:    itemID,
		StartDate: start,
		EndDate:   end,
	}
}
