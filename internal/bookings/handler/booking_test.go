package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"locmaroc/pkg/auth"
	apperrors "locmaroc/pkg/errors"
	"locmaroc/pkg/logger"
	"locmaroc/pkg/model"

	"github.com/julienschmidt/httprouter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

const (
	testSecret = "handler-test-secret-0123456789"
	userID     = "65a000000000000000000001"
	bookingID  = "65b000000000000000000001"
)

type mockBookingService struct {
	mock.Mock
}

func (m *mockBookingService) Create(ctx context.Context, s auth.Session, req *model.BookingRequest) (*model.Booking, error) {
	args := m.Called(ctx, s, req)
	return bookingArg(args, 0), args.Error(1)
}

func (m *mockBookingService) Accept(ctx context.Context, s auth.Session, id string) (*model.Booking, error) {
	args := m.Called(ctx, s, id)
	return bookingArg(args, 0), args.Error(1)
}

func (m *mockBookingService) Reject(ctx context.Context, s auth.Session, id string, req *model.TransitionRequest) (*model.Booking, error) {
	args := m.Called(ctx, s, id, req)
	return bookingArg(args, 0), args.Error(1)
}

func (m *mockBookingService) Cancel(ctx context.Context, s auth.Session, id string, req *model.TransitionRequest) (*model.Booking, error) {
	args := m.Called(ctx, s, id, req)
	return bookingArg(args, 0), args.Error(1)
}

func (m *mockBookingService) GetByID(ctx context.Context, s auth.Session, id string) (*model.Booking, error) {
	args := m.Called(ctx, s, id)
	return bookingArg(args, 0), args.Error(1)
}

func (m *mockBookingService) ListMine(ctx context.Context, s auth.Session) ([]*model.Booking, error) {
	args := m.Called(ctx, s)
	list, _ := args.Get(0).([]*model.Booking)
	return list, args.Error(1)
}

func (m *mockBookingService) AddMessage(ctx context.Context, s auth.Session, id string, req *model.MessageRequest) (*model.Booking, error) {
	args := m.Called(ctx, s, id, req)
	return bookingArg(args, 0), args.Error(1)
}

func (m *mockBookingService) CheckAvailability(ctx context.Context, itemID string, start, end time.Time) (*model.Availability, error) {
	args := m.Called(ctx, itemID, start, end)
	a, _ := args.Get(0).(*model.Availability)
	return a, args.Error(1)
}

func bookingArg(args mock.Arguments, i int) *model.Booking {
	b, _ := args.Get(i).(*model.Booking)
	return b
}

func setup(t *testing.T) (*httprouter.Router, *mockBookingService, string) {
	t.Helper()
	issuer := auth.NewTokenIssuer(testSecret, time.Hour)
	token, err := issuer.Issue(userID)
	require.NoError(t, err)

	svc := &mockBookingService{}
	router := httprouter.New()
	NewBookingHandler(svc, auth.NewGuard(issuer), logger.Nop()).RegisterRoutes(router)
	return router, svc, token
}

func do(router http.Handler, method, path, token, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

var session = mock.MatchedBy(func(s auth.Session) bool { return s.UserID == userID })

func TestCreate(t *testing.T) {
	router, svc, token := setup(t)
	created := &model.Booking{ID: bookingID, Status: model.BookingPending}
	svc.On("Create", mock.Anything, session, &model.BookingRequest{
		ItemID:    "65c000000000000000000001",
		StartDate: "2024-01-01",
		EndDate:   "2024-01-03",
	}).Return(created, nil)

	rec := do(router, http.MethodPost, "/api/v1/bookings", token,
		`{"item_id":"65c000000000000000000001","start_date":"2024-01-01","end_date":"2024-01-03"}`)

	require.Equal(t, http.StatusCreated, rec.Code)
	var body struct {
		Data model.Booking `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, bookingID, body.Data.ID)
	assert.Equal(t, model.BookingPending, body.Data.Status)
	svc.AssertExpectations(t)
}

func TestCreate_RequiresAuth(t *testing.T) {
	router, svc, _ := setup(t)

	rec := do(router, http.MethodPost, "/api/v1/bookings", "", `{}`)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	svc.AssertNotCalled(t, "Create", mock.Anything, mock.Anything, mock.Anything)
}

func TestCreate_BadBody(t *testing.T) {
	router, svc, token := setup(t)

	for _, body := range []string{`{"item_id":`, `{"surprise":true}`} {
		rec := do(router, http.MethodPost, "/api/v1/bookings", token, body)
		assert.Equal(t, http.StatusBadRequest, rec.Code, body)
	}
	svc.AssertNotCalled(t, "Create", mock.Anything, mock.Anything, mock.Anything)
}

func TestErrorMapping(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
		code string
	}{
		{"not found", apperrors.NotFoundWithID("Booking", bookingID), http.StatusNotFound, apperrors.CodeNotFound},
		{"forbidden", apperrors.Forbidden("Only the owner can accept this booking"), http.StatusForbidden, apperrors.CodeForbidden},
		{"invalid state", apperrors.InvalidState("Cannot accept a booking that is confirmed"), http.StatusBadRequest, apperrors.CodeInvalidState},
		{"conflict", apperrors.Conflict("Item is already booked"), http.StatusConflict, apperrors.CodeConflict},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router, svc, token := setup(t)
			svc.On("Accept", mock.Anything, session, bookingID).Return(nil, tt.err)

			rec := do(router, http.MethodPut, "/api/v1/bookings/id/"+bookingID+"/accept", token, "")

			require.Equal(t, tt.want, rec.Code)
			var body apperrors.ErrorResponse
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.Equal(t, tt.code, body.Code)
			assert.NotEmpty(t, body.Message)
		})
	}
}

func TestRejectAndCancel_OptionalReason(t *testing.T) {
	router, svc, token := setup(t)
	svc.On("Reject", mock.Anything, session, bookingID, &model.TransitionRequest{Reason: "Indisponible"}).
		Return(&model.Booking{ID: bookingID, Status: model.BookingRejected}, nil)
	svc.On("Cancel", mock.Anything, session, bookingID, &model.TransitionRequest{}).
		Return(&model.Booking{ID: bookingID, Status: model.BookingCancelled}, nil)

	rec := do(router, http.MethodPut, "/api/v1/bookings/id/"+bookingID+"/reject", token, `{"reason":"Indisponible"}`)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = do(router, http.MethodPut, "/api/v1/bookings/id/"+bookingID+"/cancel", token, "")
	assert.Equal(t, http.StatusOK, rec.Code)

	svc.AssertExpectations(t)
}

func TestListMineAndGetByID(t *testing.T) {
	router, svc, token := setup(t)
	svc.On("ListMine", mock.Anything, session).Return([]*model.Booking{{ID: bookingID}}, nil)
	svc.On("GetByID", mock.Anything, session, bookingID).Return(&model.Booking{ID: bookingID}, nil)

	rec := do(router, http.MethodGet, "/api/v1/bookings/my-bookings", token, "")
	require.Equal(t, http.StatusOK, rec.Code)
	var list struct {
		Data []model.Booking `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
	assert.Len(t, list.Data, 1)

	rec = do(router, http.MethodGet, "/api/v1/bookings/id/"+bookingID, token, "")
	assert.Equal(t, http.StatusOK, rec.Code)

	svc.AssertExpectations(t)
}

func TestAddMessage(t *testing.T) {
	router, svc, token := setup(t)
	svc.On("AddMessage", mock.Anything, session, bookingID, &model.MessageRequest{Message: "Bonjour"}).
		Return(&model.Booking{ID: bookingID, Messages: []model.BookingMessage{{SenderID: userID, Message: "Bonjour"}}}, nil)

	rec := do(router, http.MethodPost, "/api/v1/bookings/id/"+bookingID+"/messages", token, `{"message":"Bonjour"}`)

	assert.Equal(t, http.StatusCreated, rec.Code)
	svc.AssertExpectations(t)
}
