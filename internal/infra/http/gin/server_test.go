package ginserver

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"staybeyond/internal/app/commands"
	"staybeyond/internal/app/flow"
	bookingapp "staybeyond/internal/app/handlers/booking"
	"staybeyond/internal/app/middleware"
	"staybeyond/internal/app/queries"
	authsvc "staybeyond/internal/app/services/auth"
	"staybeyond/internal/domain/catalog"
	"staybeyond/internal/domain/shared/money"
	"staybeyond/internal/infra/config"
	"staybeyond/internal/infra/obs"
	"staybeyond/internal/infra/payment/razorpay"
	"staybeyond/internal/infra/security"
	"staybeyond/internal/infra/storage/memory"
)

type stubLoader struct{}

func (stubLoader) Load(context.Context, string) error { return nil }

type testServer struct {
	router http.Handler
	outbox *memory.OutboxStore
}

// newTestServer assembles the service the way the composition root does,
// with in-memory storage and a stubbed checkout script fetch.
func newTestServer(t *testing.T) *testServer {
	t.Helper()

	stays := memory.NewStayRepository()
	require.NoError(t, stays.Save(context.Background(), &catalog.Stay{
		ID:          "stay-1",
		Name:        "Lake Pichola Heritage Palace",
		Location:    "Udaipur",
		NightlyRate: money.Must(1000, "INR"),
		MaxGuests:   4,
	}))
	bookings := memory.NewBookingRepository()
	box := memory.NewOutboxStore()

	authService := &authsvc.Service{
		Users:      memory.NewUserRepository(),
		Sessions:   memory.NewSessionStore(),
		Passwords:  security.BcryptHasher{Cost: bcrypt.MinCost},
		Tokens:     security.SessionTokens{},
		SessionTTL: time.Hour,
	}

	commandBus := commands.NewInMemoryBus()
	commands.RegisterHandler(commandBus, bookingapp.CreateBookingCommand{}.Key(), &bookingapp.CreateBookingHandler{
		Stays:    stays,
		Bookings: bookings,
		Outbox:   box,
	})
	queryBus := queries.NewInMemoryBus()
	queries.RegisterHandler(queryBus, bookingapp.ListMyBookingsQuery{}.Key(), &bookingapp.ListMyBookingsHandler{
		Bookings: bookings,
	})

	commandChain := middleware.ChainCommands(
		commandBus,
		middleware.Validation(middleware.SelfValidator{}),
		middleware.Idempotency(memory.NewIdempotencyStore(), nil),
		middleware.OutboxFlush(box),
	)
	queryChain := middleware.ChainQueries(queryBus)

	gateway := razorpay.New("rzp_test", razorpay.WithScriptLoader(stubLoader{}))
	flows := flow.NewRegistry(flow.RegistryConfig{
		Backend:  authService.SessionBackend,
		Stays:    stays,
		Gateway:  gateway,
		Bookings: bookings,
		Outbox:   box,
	})
	authService.OnChange = flows.HandleAuthChange

	cfg := config.Config{
		Env:         "test",
		HTTPAddr:    ":0",
		CORSOrigins: []string{"http://localhost:5173"},
	}
	server := NewServer(cfg, obs.Middleware{}, obs.HealthHandlers{}, Handlers{
		Auth:           AuthHandler{Service: authService},
		Booking:        BookingHandler{Commands: commandChain, Queries: queryChain, Flows: flows},
		Payment:        PaymentHandler{Gateway: gateway},
		AuthMiddleware: AuthMiddleware{Service: authService}.Handle,
	})
	return &testServer{router: server.Handler, outbox: box}
}

func (s *testServer) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	return rec
}

func (s *testServer) registerUser(t *testing.T) string {
	t.Helper()
	rec := s.do(t, http.MethodPost, "/api/v1/auth/register", "", map[string]string{
		"email":    "priya@example.com",
		"name":     "Priya",
		"password": "wanderlust",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var out struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	require.NotEmpty(t, out.Token)
	return out.Token
}

func bookingDates() (string, string) {
	base := time.Now().UTC().AddDate(0, 1, 0)
	return base.Format("2006-01-02"), base.AddDate(0, 0, 3).Format("2006-01-02")
}

func TestCheckoutCompleteResolvesSubmittedBooking(t *testing.T) {
	s := newTestServer(t)
	token := s.registerUser(t)
	checkIn, checkOut := bookingDates()

	rec := s.do(t, http.MethodPost, "/api/v1/bookings", token, map[string]any{
		"stay_id":        "stay-1",
		"checkin_date":   checkIn,
		"checkout_date":  checkOut,
		"guests":         2,
		"payment_method": "razorpay",
	})
	require.Equal(t, http.StatusAccepted, rec.Code, rec.Body.String())
	var pending struct {
		State  string `json:"state"`
		Nights int    `json:"nights"`
		Total  int64  `json:"total"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &pending))
	assert.Equal(t, "payment_pending", pending.State)
	assert.Equal(t, 3, pending.Nights)
	assert.Equal(t, int64(3900), pending.Total)

	rec = s.do(t, http.MethodPost, "/api/v1/payments/checkout/complete", token, map[string]string{
		"razorpay_payment_id": "pay_live_1",
	})
	require.Equal(t, http.StatusNoContent, rec.Code, rec.Body.String())

	rec = s.do(t, http.MethodGet, "/api/v1/me/bookings", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var list struct {
		Items []struct {
			PaymentID     string `json:"payment_id"`
			PaymentMethod string `json:"payment_method"`
			PaymentStatus string `json:"payment_status"`
		} `json:"items"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
	require.Len(t, list.Items, 1)
	assert.Equal(t, "pay_live_1", list.Items[0].PaymentID)
	assert.Equal(t, "gateway", list.Items[0].PaymentMethod)
	assert.Equal(t, "completed", list.Items[0].PaymentStatus)

	doc, err := s.outbox.Claim(context.Background(), "dispatcher-test")
	require.NoError(t, err)
	require.NotNil(t, doc)
	assert.Equal(t, "booking.created", doc.Name)
}

func TestCheckoutDismissLeavesNoBooking(t *testing.T) {
	s := newTestServer(t)
	token := s.registerUser(t)
	checkIn, checkOut := bookingDates()

	rec := s.do(t, http.MethodPost, "/api/v1/bookings", token, map[string]any{
		"stay_id":        "stay-1",
		"checkin_date":   checkIn,
		"checkout_date":  checkOut,
		"guests":         2,
		"payment_method": "razorpay",
	})
	require.Equal(t, http.StatusAccepted, rec.Code, rec.Body.String())

	rec = s.do(t, http.MethodPost, "/api/v1/payments/checkout/dismiss", token, nil)
	require.Equal(t, http.StatusNoContent, rec.Code)

	rec = s.do(t, http.MethodGet, "/api/v1/me/bookings", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"items":[]`)

	doc, err := s.outbox.Claim(context.Background(), "dispatcher-test")
	require.NoError(t, err)
	assert.Nil(t, doc)
}

func TestCheckoutCallbacksWithoutOpenAttemptConflict(t *testing.T) {
	s := newTestServer(t)
	token := s.registerUser(t)

	rec := s.do(t, http.MethodPost, "/api/v1/payments/checkout/complete", token, map[string]string{
		"razorpay_payment_id": "pay_orphan",
	})
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = s.do(t, http.MethodPost, "/api/v1/payments/checkout/dismiss", token, nil)
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestCreateBookingPayLaterIgnoresClientPaymentIDs(t *testing.T) {
	s := newTestServer(t)
	token := s.registerUser(t)
	checkIn, checkOut := bookingDates()

	// A client-supplied payment id is not part of the contract and must not
	// mark the booking captured.
	rec := s.do(t, http.MethodPost, "/api/v1/bookings", token, map[string]any{
		"stay_id":       "stay-1",
		"checkin_date":  checkIn,
		"checkout_date": checkOut,
		"guests":        2,
		"payment_id":    "pay_forged",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var res struct {
		PaymentMethod string `json:"payment_method"`
		PaymentStatus string `json:"payment_status"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
	assert.Equal(t, "default", res.PaymentMethod)
	assert.Equal(t, "pending", res.PaymentStatus)
}

func TestCreateBookingUnknownPaymentMethod(t *testing.T) {
	s := newTestServer(t)
	token := s.registerUser(t)
	checkIn, checkOut := bookingDates()

	rec := s.do(t, http.MethodPost, "/api/v1/bookings", token, map[string]any{
		"stay_id":        "stay-1",
		"checkin_date":   checkIn,
		"checkout_date":  checkOut,
		"guests":         2,
		"payment_method": "crypto",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCreateBookingRequiresAuth(t *testing.T) {
	s := newTestServer(t)
	checkIn, checkOut := bookingDates()

	rec := s.do(t, http.MethodPost, "/api/v1/bookings", "", map[string]any{
		"stay_id":       "stay-1",
		"checkin_date":  checkIn,
		"checkout_date": checkOut,
		"guests":        2,
	})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestLogoutInvalidatesOpenCheckoutFlow(t *testing.T) {
	s := newTestServer(t)
	token := s.registerUser(t)
	checkIn, checkOut := bookingDates()

	rec := s.do(t, http.MethodPost, "/api/v1/auth/logout", token, nil)
	require.Equal(t, http.StatusNoContent, rec.Code, rec.Body.String())

	rec = s.do(t, http.MethodPost, "/api/v1/bookings", token, map[string]any{
		"stay_id":        "stay-1",
		"checkin_date":   checkIn,
		"checkout_date":  checkOut,
		"guests":         2,
		"payment_method": "razorpay",
	})
	assert.Equal(t, http.StatusUnauthorized, rec.Code, fmt.Sprintf("stale token %s must not book", token))
}
