package handler

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/Astemirdum/lending-service/lending/internal/errs"
	"github.com/Astemirdum/lending-service/lending/internal/model"
	"github.com/Astemirdum/lending-service/lending/internal/service"
	_ "github.com/Astemirdum/lending-service/lending/swagger"
	"github.com/Astemirdum/lending-service/pkg/auth"
	md "github.com/Astemirdum/lending-service/pkg/middleware"
	"github.com/Astemirdum/lending-service/pkg/validate"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/pkg/errors"
	echoSwagger "github.com/swaggo/echo-swagger"
	"go.uber.org/zap"
)

type Handler struct {
	catalogSvc   CatalogService
	borrowingSvc BorrowingService
	paymentSvc   PaymentService
	cmds         service.Commands
	idempotency  IdempotencyStore
	log          *zap.Logger
}

type Option func(h *Handler)

// WithIdempotency dedupes POST /borrowings by the Idempotency-Key header.
func WithIdempotency(store IdempotencyStore) Option {
	return func(h *Handler) {
		h.idempotency = store
	}
}

func New(catalogSvc CatalogService, borrowingSvc BorrowingService, paymentSvc PaymentService, log *zap.Logger, opts ...Option) *Handler {
	h := &Handler{
		catalogSvc:   catalogSvc,
		borrowingSvc: borrowingSvc,
		paymentSvc:   paymentSvc,
		cmds:         service.NewCommands(borrowingSvc, paymentSvc),
		log:          log.Named("handler"),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

func (h *Handler) NewRouter() *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.Use(middleware.RecoverWithConfig(middleware.RecoverConfig{
		StackSize: 4 << 10, // 4 KB
	}))
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{http.MethodGet, http.MethodOptions, http.MethodHead, http.MethodPost, http.MethodDelete},
		AllowCredentials: true,
	}))

	e.GET("/manage/health", h.Health)
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	e.Validator = validate.NewCustomValidator()
	api := e.Group("/api/v1",
		middleware.RequestLoggerWithConfig(md.RequestLoggerConfig(h.log)),
		middleware.RequestID(),
	)

	// checkout redirects carry only the session id
	api.GET("/payments/success", h.PaymentSuccess)
	api.GET("/payments/cancel", h.PaymentCancel)

	authed := api.Group("", md.AuthContext)

	authed.GET("/books", h.GetBooks)
	authed.GET("/books/:id", h.GetBook)
	authed.POST("/books", h.CreateBook, md.StaffOnly)
	authed.DELETE("/books/:id", h.DeleteBook, md.StaffOnly)

	authed.GET("/borrowings", h.GetBorrowings)
	authed.POST("/borrowings", h.CreateBorrowing, h.idempotent)
	authed.GET("/borrowings/:id", h.GetBorrowing)
	authed.POST("/borrowings/:id/return", h.ReturnBorrowing)

	authed.GET("/payments", h.GetPayments)
	authed.POST("/payments/renew", h.RenewPayment)
	authed.GET("/payments/:id", h.GetPayment)

	return e
}

func (h *Handler) Health(c echo.Context) error {
	return c.String(http.StatusOK, "OK")
}

// @Summary List books
// @Tags books
// @Produce json
// @Param X-User-Id header int true "caller id set by the gateway"
// @Param X-User-Role header string false "user or admin"
// @Param title query string false "title substring"
// @Param author query string false "author substring"
// @Success 200 {array} model.Book
// @Router /books [get]
func (h *Handler) GetBooks(c echo.Context) error {
	books, err := h.catalogSvc.ListBooks(c.Request().Context(), model.BookFilter{
		Title:  c.QueryParam("title"),
		Author: c.QueryParam("author"),
	})
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, books)
}

// @Summary Get book
// @Tags books
// @Produce json
// @Param X-User-Id header int true "caller id set by the gateway"
// @Param X-User-Role header string false "user or admin"
// @Param id path int true "book id"
// @Success 200 {object} model.Book
// @Failure 404 {object} echo.HTTPError
// @Router /books/{id} [get]
func (h *Handler) GetBook(c echo.Context) error {
	id, err := idParam(c)
	if err != nil {
		return err
	}
	book, err := h.catalogSvc.GetBook(c.Request().Context(), id)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, book)
}

// @Summary Create book
// @Tags books
// @Accept json
// @Produce json
// @Param X-User-Id header int true "caller id set by the gateway"
// @Param X-User-Role header string false "user or admin"
// @Param book body model.Book true "book"
// @Success 201 {object} model.Book
// @Failure 400,403 {object} echo.HTTPError
// @Router /books [post]
func (h *Handler) CreateBook(c echo.Context) error {
	var book model.Book
	if err := c.Bind(&book); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := c.Validate(book); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	created, err := h.catalogSvc.CreateBook(c.Request().Context(), book)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusCreated, created)
}

// @Summary Delete book
// @Tags books
// @Param X-User-Id header int true "caller id set by the gateway"
// @Param X-User-Role header string false "user or admin"
// @Param id path int true "book id"
// @Success 204
// @Failure 403,404 {object} echo.HTTPError
// @Router /books/{id} [delete]
func (h *Handler) DeleteBook(c echo.Context) error {
	id, err := idParam(c)
	if err != nil {
		return err
	}
	if err := h.catalogSvc.DeleteBook(c.Request().Context(), id); err != nil {
		return httpError(err)
	}
	return c.NoContent(http.StatusNoContent)
}

// @Summary List borrowings
// @Tags borrowings
// @Produce json
// @Param X-User-Id header int true "caller id set by the gateway"
// @Param X-User-Role header string false "user or admin"
// @Param is_active query bool false "only active borrowings"
// @Param user query string false "comma-separated user ids, staff only"
// @Success 200 {array} model.BorrowingDetail
// @Router /borrowings [get]
func (h *Handler) GetBorrowings(c echo.Context) error {
	ctx := c.Request().Context()
	id, err := auth.FromContext(ctx)
	if err != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, err.Error())
	}

	var filter model.BorrowingFilter
	if isActive := c.QueryParam("is_active"); isActive != "" {
		if filter.IsActive, err = strconv.ParseBool(isActive); err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, errors.New("is_active is invalid"))
		}
	}
	if users := c.QueryParam("user"); users != "" {
		for _, raw := range strings.Split(users, ",") {
			userID, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
			if err != nil {
				return echo.NewHTTPError(http.StatusBadRequest, errors.New("user is invalid"))
			}
			filter.UserIDs = append(filter.UserIDs, userID)
		}
	}

	list, err := h.borrowingSvc.ListBorrowings(ctx, id, filter)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, list)
}

// @Summary Borrow a book
// @Tags borrowings
// @Accept json
// @Produce json
// @Param X-User-Id header int true "caller id set by the gateway"
// @Param X-User-Role header string false "user or admin"
// @Param Idempotency-Key header string false "repeat-safe request key"
// @Param request body model.CreateBorrowingRequest true "borrowing"
// @Success 201 {object} model.BorrowingDetail
// @Failure 400,404,409 {object} echo.HTTPError
// @Router /borrowings [post]
func (h *Handler) CreateBorrowing(c echo.Context) error {
	ctx := c.Request().Context()
	id, err := auth.FromContext(ctx)
	if err != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, err.Error())
	}
	var req model.CreateBorrowingRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := c.Validate(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	b, err := h.cmds.Create(ctx, id, req)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusCreated, b)
}

// @Summary Get borrowing
// @Tags borrowings
// @Produce json
// @Param X-User-Id header int true "caller id set by the gateway"
// @Param X-User-Role header string false "user or admin"
// @Param id path int true "borrowing id"
// @Success 200 {object} model.BorrowingDetail
// @Failure 404 {object} echo.HTTPError
// @Router /borrowings/{id} [get]
func (h *Handler) GetBorrowing(c echo.Context) error {
	ctx := c.Request().Context()
	id, err := auth.FromContext(ctx)
	if err != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, err.Error())
	}
	borrowingID, err := idParam(c)
	if err != nil {
		return err
	}
	b, err := h.borrowingSvc.GetBorrowing(ctx, id, borrowingID)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, b)
}

// @Summary Return a book
// @Tags borrowings
// @Produce json
// @Param X-User-Id header int true "caller id set by the gateway"
// @Param X-User-Role header string false "user or admin"
// @Param id path int true "borrowing id"
// @Success 200 {object} model.BorrowingDetail
// @Failure 404,409 {object} echo.HTTPError
// @Router /borrowings/{id}/return [post]
func (h *Handler) ReturnBorrowing(c echo.Context) error {
	ctx := c.Request().Context()
	id, err := auth.FromContext(ctx)
	if err != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, err.Error())
	}
	borrowingID, err := idParam(c)
	if err != nil {
		return err
	}
	b, err := h.cmds.Return(ctx, id, borrowingID)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, b)
}

// @Summary List payments
// @Tags payments
// @Produce json
// @Param X-User-Id header int true "caller id set by the gateway"
// @Param X-User-Role header string false "user or admin"
// @Success 200 {array} model.Payment
// @Router /payments [get]
func (h *Handler) GetPayments(c echo.Context) error {
	ctx := c.Request().Context()
	id, err := auth.FromContext(ctx)
	if err != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, err.Error())
	}
	list, err := h.paymentSvc.ListPayments(ctx, id)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, list)
}

// @Summary Get payment
// @Tags payments
// @Produce json
// @Param X-User-Id header int true "caller id set by the gateway"
// @Param X-User-Role header string false "user or admin"
// @Param id path int true "payment id"
// @Success 200 {object} model.Payment
// @Failure 404 {object} echo.HTTPError
// @Router /payments/{id} [get]
func (h *Handler) GetPayment(c echo.Context) error {
	ctx := c.Request().Context()
	id, err := auth.FromContext(ctx)
	if err != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, err.Error())
	}
	paymentID, err := idParam(c)
	if err != nil {
		return err
	}
	p, err := h.paymentSvc.GetPayment(ctx, id, paymentID)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, p)
}

// @Summary Confirm a paid checkout session
// @Tags payments
// @Produce json
// @Param session_id query string true "checkout session id"
// @Success 200 {object} model.Payment
// @Failure 402,404 {object} echo.HTTPError
// @Router /payments/success [get]
func (h *Handler) PaymentSuccess(c echo.Context) error {
	sessionID := c.QueryParam("session_id")
	if sessionID == "" {
		return echo.NewHTTPError(http.StatusBadRequest, errors.New("session_id is required"))
	}
	p, err := h.cmds.Confirm(c.Request().Context(), auth.Identity{}, sessionID)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, p)
}

type messageResponse struct {
	Message string         `json:"message"`
	Payment *model.Payment `json:"payment,omitempty"`
}

// @Summary Checkout cancelled
// @Tags payments
// @Produce json
// @Param session_id query string true "checkout session id"
// @Success 200
// @Failure 404 {object} echo.HTTPError
// @Router /payments/cancel [get]
func (h *Handler) PaymentCancel(c echo.Context) error {
	sessionID := c.QueryParam("session_id")
	if sessionID == "" {
		return echo.NewHTTPError(http.StatusBadRequest, errors.New("session_id is required"))
	}
	p, err := h.paymentSvc.Cancel(c.Request().Context(), sessionID)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, messageResponse{
		Message: "Payment can be paid later. The session is available for 24 hours.",
		Payment: &p,
	})
}

// @Summary Renew the latest expired payment
// @Tags payments
// @Produce json
// @Param X-User-Id header int true "caller id set by the gateway"
// @Param X-User-Role header string false "user or admin"
// @Success 200 {object} model.Payment
// @Failure 503 {object} echo.HTTPError
// @Router /payments/renew [post]
func (h *Handler) RenewPayment(c echo.Context) error {
	ctx := c.Request().Context()
	id, err := auth.FromContext(ctx)
	if err != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, err.Error())
	}
	p, err := h.cmds.Renew(ctx, id, struct{}{})
	if err != nil {
		if errors.Is(err, errs.ErrNoneToRenew) {
			return c.JSON(http.StatusOK, messageResponse{Message: "You have no expired payments."})
		}
		return httpError(err)
	}
	return c.JSON(http.StatusOK, p)
}

func idParam(c echo.Context) (int64, error) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, echo.NewHTTPError(http.StatusBadRequest, errors.New("id is invalid"))
	}
	return id, nil
}
