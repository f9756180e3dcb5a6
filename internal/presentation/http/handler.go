// Package httppresentation exposes the marketplace over HTTP. Routes
// mirror the public API: user registration and role management, the
// plant catalog, order placement and cancellation, and the enriched
// customer order listing. Domain error kinds map one-to-one onto
// status codes.
package httppresentation

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/plantnet/backend/internal/application/access"
	appcatalog "github.com/plantnet/backend/internal/application/catalog"
	apporder "github.com/plantnet/backend/internal/application/order"
	"github.com/plantnet/backend/internal/application/orderview"
	domcatalog "github.com/plantnet/backend/internal/domain/catalog"
	domorder "github.com/plantnet/backend/internal/domain/order"
	"github.com/plantnet/backend/internal/domain/user"
	"github.com/plantnet/backend/internal/platform/apperr"
	"github.com/plantnet/backend/internal/platform/token"
)

const tokenCookieName = "token"

type Handler struct {
	access  *access.Service
	catalog *appcatalog.Service
	orders  *apporder.Service
	views   *orderview.Service
	tokens  *token.Manager
	log     *zap.Logger
	metrics *Metrics
	tracer  trace.Tracer

	// secureCookies toggles the Secure/SameSite=None cookie attributes
	// used behind TLS.
	secureCookies bool
}

func NewHandler(
	accessSvc *access.Service,
	catalogSvc *appcatalog.Service,
	orderSvc *apporder.Service,
	viewSvc *orderview.Service,
	tokens *token.Manager,
	logger *zap.Logger,
	metrics *Metrics,
	secureCookies bool,
) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{
		access:        accessSvc,
		catalog:       catalogSvc,
		orders:        orderSvc,
		views:         viewSvc,
		tokens:        tokens,
		log:           logger.With(zap.String("component", "http_server")),
		metrics:       metrics,
		tracer:        otel.Tracer("plantnet/http"),
		secureCookies: secureCookies,
	}
}

func (h *Handler) Router() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("POST /jwt", h.wrap("/jwt", h.handleIssueToken))
	mux.HandleFunc("GET /logout", h.wrap("/logout", h.handleLogout))

	mux.HandleFunc("POST /users/{email}", h.wrap("/users/{email}", h.handleRegister))
	mux.HandleFunc("PATCH /users/{email}", h.wrap("/users/{email}", h.withSelf(h.handleRequestUpgrade)))
	mux.HandleFunc("GET /users/role/{email}", h.wrap("/users/role/{email}", h.withSelf(h.handleGetRole)))
	mux.HandleFunc("PATCH /users/role/{email}", h.wrap("/users/role/{email}", h.withAuth(h.handleApproveRole)))
	mux.HandleFunc("GET /all-users/{email}", h.wrap("/all-users/{email}", h.withSelf(h.handleListUsers)))

	mux.HandleFunc("POST /plants", h.wrap("/plants", h.withRole(user.RoleSeller, h.handleAddPlant)))
	mux.HandleFunc("GET /plants", h.wrap("/plants", h.handleListPlants))
	mux.HandleFunc("GET /plants/seller", h.wrap("/plants/seller", h.withRole(user.RoleSeller, h.handleSellerPlants)))
	mux.HandleFunc("GET /plants/{id}", h.wrap("/plants/{id}", h.handleGetPlant))
	mux.HandleFunc("DELETE /plants/{id}", h.wrap("/plants/{id}", h.withRole(user.RoleSeller, h.handleDeletePlant)))
	mux.HandleFunc("PATCH /plants/quantity/{id}", h.wrap("/plants/quantity/{id}", h.withAuth(h.handleAdjustQuantity)))

	mux.HandleFunc("POST /orders", h.wrap("/orders", h.withAuth(h.handlePlaceOrder)))
	mux.HandleFunc("DELETE /orders/{id}", h.wrap("/orders/{id}", h.withAuth(h.handleCancelOrder)))
	mux.HandleFunc("GET /customer-orders/{email}", h.wrap("/customer-orders/{email}", h.withSelf(h.handleCustomerOrders)))

	mux.HandleFunc("GET /health", h.wrap("/health", h.handleHealth))

	return mux
}

type issueTokenRequest struct {
	Email string `json:"email"`
}

func (h *Handler) handleIssueToken(w http.ResponseWriter, r *http.Request) {
	var req issueTokenRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}
	if req.Email == "" {
		writeError(w, apperr.New(apperr.KindInvalid, "email is required"))
		return
	}

	signed, err := h.tokens.Issue(req.Email)
	if err != nil {
		writeError(w, err)
		return
	}
	h.setTokenCookie(w, signed, 0)
	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

func (h *Handler) handleLogout(w http.ResponseWriter, r *http.Request) {
	h.setTokenCookie(w, "", -1)
	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

func (h *Handler) setTokenCookie(w http.ResponseWriter, value string, maxAge int) {
	sameSite := http.SameSiteStrictMode
	if h.secureCookies {
		sameSite = http.SameSiteNoneMode
	}
	http.SetCookie(w, &http.Cookie{
		Name:     tokenCookieName,
		Value:    value,
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   h.secureCookies,
		SameSite: sameSite,
	})
}

type registerRequest struct {
	Name  string `json:"name"`
	Image string `json:"image"`
}

type userResponse struct {
	Email  string `json:"email"`
	Name   string `json:"name,omitempty"`
	Image  string `json:"image,omitempty"`
	Role   string `json:"role"`
	Status string `json:"status,omitempty"`
}

func toUserResponse(u *user.User) userResponse {
	return userResponse{
		Email:  u.Email,
		Name:   u.Name,
		Image:  u.Image,
		Role:   string(u.Role),
		Status: string(u.Status),
	}
}

func (h *Handler) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}

	u, err := h.access.RegisterIfAbsent(r.Context(), r.PathValue("email"), req.Name, req.Image)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toUserResponse(u))
}

func (h *Handler) handleRequestUpgrade(w http.ResponseWriter, r *http.Request) {
	if err := h.access.RequestRoleUpgrade(r.Context(), r.PathValue("email")); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

func (h *Handler) handleGetRole(w http.ResponseWriter, r *http.Request) {
	role, err := h.access.RoleOf(r.Context(), r.PathValue("email"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"role": string(role)})
}

type approveRoleRequest struct {
	Role string `json:"role"`
}

func (h *Handler) handleApproveRole(w http.ResponseWriter, r *http.Request) {
	var req approveRoleRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}

	adminEmail, _ := identityFrom(r.Context())
	err := h.access.ApproveRoleChange(r.Context(), adminEmail, r.PathValue("email"), user.Role(req.Role))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

func (h *Handler) handleListUsers(w http.ResponseWriter, r *http.Request) {
	email, _ := identityFrom(r.Context())
	users, err := h.access.ListOthers(r.Context(), email)
	if err != nil {
		writeError(w, err)
		return
	}
	out := make([]userResponse, 0, len(users))
	for _, u := range users {
		out = append(out, toUserResponse(u))
	}
	writeJSON(w, http.StatusOK, out)
}

type addPlantRequest struct {
	Name        string `json:"name"`
	Category    string `json:"category"`
	Description string `json:"description"`
	ImageURL    string `json:"imageUrl"`
	Price       int64  `json:"price"`
	Quantity    int    `json:"quantity"`
}

type plantResponse struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Category    string `json:"category,omitempty"`
	Description string `json:"description,omitempty"`
	ImageURL    string `json:"imageUrl,omitempty"`
	Price       int64  `json:"price"`
	Quantity    int    `json:"quantity"`
	SellerEmail string `json:"sellerEmail"`
}

func toPlantResponse(i *domcatalog.Item) plantResponse {
	return plantResponse{
		ID:          i.ID,
		Name:        i.Name,
		Category:    i.Category,
		Description: i.Description,
		ImageURL:    i.ImageURL,
		Price:       i.Price,
		Quantity:    i.Quantity,
		SellerEmail: i.SellerEmail,
	}
}

func (h *Handler) handleAddPlant(w http.ResponseWriter, r *http.Request) {
	var req addPlantRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}

	sellerEmail, _ := identityFrom(r.Context())
	item, err := h.catalog.Add(r.Context(), sellerEmail, appcatalog.AddItemInput{
		Name:        req.Name,
		Category:    req.Category,
		Description: req.Description,
		ImageURL:    req.ImageURL,
		Price:       req.Price,
		Quantity:    req.Quantity,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toPlantResponse(item))
}

func (h *Handler) handleListPlants(w http.ResponseWriter, r *http.Request) {
	items, err := h.catalog.List(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toPlantResponses(items))
}

func (h *Handler) handleSellerPlants(w http.ResponseWriter, r *http.Request) {
	sellerEmail, _ := identityFrom(r.Context())
	items, err := h.catalog.SellerItems(r.Context(), sellerEmail)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toPlantResponses(items))
}

func toPlantResponses(items []*domcatalog.Item) []plantResponse {
	out := make([]plantResponse, 0, len(items))
	for _, i := range items {
		out = append(out, toPlantResponse(i))
	}
	return out
}

func (h *Handler) handleGetPlant(w http.ResponseWriter, r *http.Request) {
	item, err := h.catalog.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toPlantResponse(item))
}

func (h *Handler) handleDeletePlant(w http.ResponseWriter, r *http.Request) {
	sellerEmail, _ := identityFrom(r.Context())
	if err := h.catalog.Delete(r.Context(), sellerEmail, r.PathValue("id")); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

type adjustQuantityRequest struct {
	Quantity  int    `json:"quantity"`
	Direction string `json:"direction"`
}

func (h *Handler) handleAdjustQuantity(w http.ResponseWriter, r *http.Request) {
	var req adjustQuantityRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}

	sellerEmail, _ := identityFrom(r.Context())
	item, err := h.orders.AdjustStock(r.Context(), sellerEmail, r.PathValue("id"), req.Quantity, apporder.Direction(req.Direction))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toPlantResponse(item))
}

type placeOrderRequest struct {
	ItemID   string `json:"itemId"`
	Quantity int    `json:"quantity"`
}

type orderResponse struct {
	ID            string    `json:"id"`
	CustomerEmail string    `json:"customerEmail"`
	ItemID        string    `json:"itemId"`
	Quantity      int       `json:"quantity"`
	Price         int64     `json:"price"`
	Status        string    `json:"status"`
	CreatedAt     time.Time `json:"createdAt"`
}

func toOrderResponse(o *domorder.Order) orderResponse {
	return orderResponse{
		ID:            o.ID,
		CustomerEmail: o.CustomerEmail,
		ItemID:        o.ItemID,
		Quantity:      o.Quantity,
		Price:         o.Price,
		Status:        string(o.Status),
		CreatedAt:     o.CreatedAt,
	}
}

func (h *Handler) handlePlaceOrder(w http.ResponseWriter, r *http.Request) {
	var req placeOrderRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}

	customerEmail, _ := identityFrom(r.Context())
	o, err := h.orders.Place(r.Context(), customerEmail, req.ItemID, req.Quantity)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toOrderResponse(o))
}

func (h *Handler) handleCancelOrder(w http.ResponseWriter, r *http.Request) {
	o, err := h.orders.Cancel(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toOrderResponse(o))
}

type customerOrderResponse struct {
	orderResponse
	Name     string `json:"name"`
	Category string `json:"category,omitempty"`
	Image    string `json:"image,omitempty"`
}

func (h *Handler) handleCustomerOrders(w http.ResponseWriter, r *http.Request) {
	orders, err := h.views.ListCustomerOrders(r.Context(), r.PathValue("email"))
	if err != nil {
		writeError(w, err)
		return
	}

	out := make([]customerOrderResponse, 0, len(orders))
	for _, co := range orders {
		out = append(out, customerOrderResponse{
			orderResponse: toOrderResponse(&co.Order),
			Name:          co.ItemName,
			Category:      co.ItemCategory,
			Image:         co.ItemImage,
		})
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *Handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func decodeJSON(r *http.Request, v any) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return apperr.Wrap(apperr.KindInvalid, "invalid request body", err)
	}
	return nil
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

type errorResponse struct {
	Kind    string `json:"kind"`
	Message string `json:"message"`
}

// writeError maps the error kind to a status code, keeping the kind
// distinctions visible to clients.
func writeError(w http.ResponseWriter, err error) {
	kind := apperr.KindOf(err)
	msg := "internal error"
	var appErr *apperr.Error
	if errors.As(err, &appErr) {
		msg = appErr.Msg
	}
	writeJSON(w, kind.HTTPStatus(), errorResponse{
		Kind:    string(kind),
		Message: msg,
	})
}
