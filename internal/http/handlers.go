package httpapi

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"ledgerbot/internal/domain"
	"ledgerbot/internal/repository"
	"ledgerbot/internal/service"
)

// Server служебный HTTP API поверх того же учёта, что и бот
type Server struct {
	engine   *gin.Engine
	products *service.ProductService
	clients  *service.ClientService
	orders   *service.OrderService
	payments *service.PaymentService
	announce Announcer
}

// Announcer уведомляет клиентов о решениях, принятых через API. Реализуется ботом.
type Announcer interface {
	PaymentConfirmed(ctx context.Context, res *service.PaymentResult)
	PaymentRejected(ctx context.Context, res *service.PaymentResult)
	OrderDeleted(ctx context.Context, o *domain.Order)
}

type nopAnnouncer struct{}

func (nopAnnouncer) PaymentConfirmed(context.Context, *service.PaymentResult) {}
func (nopAnnouncer) PaymentRejected(context.Context, *service.PaymentResult) {}
func (nopAnnouncer) OrderDeleted(context.Context, *domain.Order) {}

// Services зависимости API; Announcer может быть nil
type Services struct {
	Products  *service.ProductService
	Clients   *service.ClientService
	Orders    *service.OrderService
	Payments  *service.PaymentService
	Announcer Announcer
}

func NewServer(svc Services, logger *log.Logger) *Server {
	if logger == nil {
		logger = log.StandardLogger()
	}
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.LoggerWithWriter(logger.WriterLevel(log.DebugLevel)), gin.Recovery())
	s := &Server{
		engine:   r,
		products: svc.Products,
		clients:  svc.Clients,
		orders:   svc.Orders,
		payments: svc.Payments,
		announce: svc.Announcer,
	}
	if s.announce == nil {
		s.announce = nopAnnouncer{}
	}
	s.registerRoutes()
	return s
}

func (s *Server) Engine() *gin.Engine { return s.engine }

func (s *Server) registerRoutes() {
	// Swagger UI
	s.engine.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	s.engine.GET("/healthz", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"status": "ok"}) })

	v1 := s.engine.Group("/api/v1")
	{
		products := v1.Group("/products")
		products.POST("", s.createProduct)
		products.GET(":id", s.getProduct)
		products.PUT(":id", s.updateProduct)
		products.DELETE(":id", s.deleteProduct)
		products.GET("", s.listProducts)

		clients := v1.Group("/clients")
		clients.GET("", s.listClients)
		clients.GET(":id", s.getClient)
		clients.PUT(":id/debt", s.setDebt)
		clients.GET(":id/entries", s.listEntries)

		orders := v1.Group("/orders")
		orders.GET("", s.listOrders)
		orders.GET(":id", s.getOrder)
		orders.DELETE(":id", s.deleteOrder)

		payments := v1.Group("/payments")
		payments.GET("", s.listPayments)
		payments.POST(":id/confirm", s.confirmPayment)
		payments.POST(":id/reject", s.rejectPayment)
	}
}

func abortWithError(c *gin.Context, err error) {
	c.JSON(mapErrorToStatus(err), gin.H{"error": err.Error()})
}

// pathID id из пути; при ошибке ответ уже отправлен
func pathID(c *gin.Context) (int64, bool) {
	id, err := parseID(c.Param("id"))
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return 0, false
	}
	return id, true
}

// Product handlers
type productReq struct {
	Name  string `json:"name"`
	Price int64  `json:"price"`
}

// @Summary Create product
// @Tags products
// @Accept json
// @Produce json
// @Param input body productReq true "Product"
// @Success 201 {object} domain.Product
// @Failure 400 {object} map[string]string
// @Failure 409 {object} map[string]string
// @Router /products [post]
func (s *Server) createProduct(c *gin.Context) {
	var req productReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	p, err := s.products.Create(c, domain.Product{Name: req.Name, Price: req.Price})
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, p)
}

// @Summary Get product by id
// @Tags products
// @Produce json
// @Param id path int true "Product ID"
// @Success 200 {object} domain.Product
// @Failure 404 {object} map[string]string
// @Router /products/{id} [get]
func (s *Server) getProduct(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	p, err := s.products.GetByID(c, id)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

// @Summary Update product
// @Tags products
// @Accept json
// @Produce json
// @Param id path int true "Product ID"
// @Param input body productReq true "Update"
// @Success 200 {object} domain.Product
// @Failure 400 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Router /products/{id} [put]
func (s *Server) updateProduct(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var req productReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	p, err := s.products.Update(c, domain.Product{ID: id, Name: req.Name, Price: req.Price})
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

// @Summary Delete product
// @Tags products
// @Param id path int true "Product ID"
// @Success 204
// @Failure 404 {object} map[string]string
// @Router /products/{id} [delete]
func (s *Server) deleteProduct(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	if err := s.products.Delete(c, id); err != nil {
		abortWithError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// @Summary List products
// @Tags products
// @Produce json
// @Param q query string false "Name contains"
// @Param min_price query int false "Min price"
// @Param max_price query int false "Max price"
// @Success 200 {array} domain.Product
// @Router /products [get]
func (s *Server) listProducts(c *gin.Context) {
	var f repository.ProductFilter
	if q := c.Query("q"); q != "" {
		f.NameSubstring = q
	}
	if v := c.Query("min_price"); v != "" {
		if x, err := strconv.ParseInt(v, 10, 64); err == nil {
			f.MinPrice = &x
		}
	}
	if v := c.Query("max_price"); v != "" {
		if x, err := strconv.ParseInt(v, 10, 64); err == nil {
			f.MaxPrice = &x
		}
	}
	list, err := s.products.List(c, f)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

// Client handlers

// @Summary List users
// @Tags clients
// @Produce json
// @Param role query string false "admin or client"
// @Success 200 {array} domain.User
// @Router /clients [get]
func (s *Server) listClients(c *gin.Context) {
	var (
		list []domain.User
		err  error
	)
	switch c.Query("role") {
	case "":
		list, err = s.clients.ListAll(c)
	case string(domain.RoleAdmin):
		list, err = s.clients.ListAdmins(c)
	case string(domain.RoleClient):
		list, err = s.clients.ListClients(c)
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid role"})
		return
	}
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

// @Summary Get user by id
// @Tags clients
// @Produce json
// @Param id path int true "User ID"
// @Success 200 {object} domain.User
// @Failure 404 {object} map[string]string
// @Router /clients/{id} [get]
func (s *Server) getClient(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	u, err := s.clients.ByID(c, id)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, u)
}

type debtReq struct {
	Debt int64 `json:"debt"`
}

// @Summary Set client debt
// @Tags clients
// @Accept json
// @Produce json
// @Param id path int true "User ID"
// @Param input body debtReq true "New debt"
// @Success 200 {object} domain.User
// @Failure 400 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Router /clients/{id}/debt [put]
func (s *Server) setDebt(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var req debtReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	u, err := s.clients.SetDebt(c, id, req.Debt)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, u)
}

// @Summary Debt journal of a client
// @Tags clients
// @Produce json
// @Param id path int true "User ID"
// @Success 200 {array} domain.DebtEntry
// @Failure 404 {object} map[string]string
// @Router /clients/{id}/entries [get]
func (s *Server) listEntries(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	list, err := s.clients.Entries(c, id)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

// Order handlers

// @Summary List orders
// @Tags orders
// @Produce json
// @Param user_id query int false "Only orders of this user"
// @Success 200 {array} service.OrderView
// @Router /orders [get]
func (s *Server) listOrders(c *gin.Context) {
	var f repository.OrderFilter
	if v := c.Query("user_id"); v != "" {
		id, err := parseID(v)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid user_id"})
			return
		}
		f.UserID = id
	}
	list, err := s.orders.List(c, f)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

// @Summary Get order with items
// @Tags orders
// @Produce json
// @Param id path int true "Order ID"
// @Success 200 {object} service.Receipt
// @Failure 404 {object} map[string]string
// @Router /orders/{id} [get]
func (s *Server) getOrder(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	r, err := s.orders.Receipt(c, id)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, r)
}

// @Summary Delete order and reverse its debt
// @Tags orders
// @Produce json
// @Param id path int true "Order ID"
// @Success 200 {object} domain.Order
// @Failure 404 {object} map[string]string
// @Router /orders/{id} [delete]
func (s *Server) deleteOrder(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	o, err := s.orders.DeleteOrder(c, id)
	if err != nil {
		abortWithError(c, err)
		return
	}
	s.announce.OrderDeleted(c, o)
	c.JSON(http.StatusOK, o)
}

// Payment handlers

// @Summary List payments
// @Tags payments
// @Produce json
// @Param pending query bool false "Only unconfirmed"
// @Param user_id query int false "Only payments of this user"
// @Success 200 {array} domain.Payment
// @Router /payments [get]
func (s *Server) listPayments(c *gin.Context) {
	var f repository.PaymentFilter
	f.Pending = c.Query("pending") == "true"
	if v := c.Query("user_id"); v != "" {
		id, err := parseID(v)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid user_id"})
			return
		}
		f.UserID = id
	}
	list, err := s.payments.List(c, f)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

// @Summary Confirm payment
// @Tags payments
// @Produce json
// @Param id path int true "Payment ID"
// @Success 200 {object} service.PaymentResult
// @Failure 404 {object} map[string]string
// @Failure 409 {object} map[string]string
// @Router /payments/{id}/confirm [post]
func (s *Server) confirmPayment(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	res, err := s.payments.ConfirmPayment(c, id)
	if err != nil {
		abortWithError(c, err)
		return
	}
	s.announce.PaymentConfirmed(c, res)
	c.JSON(http.StatusOK, res)
}

// @Summary Reject payment
// @Tags payments
// @Produce json
// @Param id path int true "Payment ID"
// @Success 200 {object} service.PaymentResult
// @Failure 404 {object} map[string]string
// @Failure 409 {object} map[string]string
// @Router /payments/{id}/reject [post]
func (s *Server) rejectPayment(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	res, err := s.payments.RejectPayment(c, id)
	if err != nil {
		abortWithError(c, err)
		return
	}
	s.announce.PaymentRejected(c, res)
	c.JSON(http.StatusOK, res)
}

func parseID(s string) (int64, error) {
	return strconv.ParseInt(s, 10, 64)
}

func mapErrorToStatus(err error) int {
	switch {
	case errors.Is(err, service.ErrInvalidInput),
		errors.Is(err, service.ErrEmptyCart),
		errors.Is(err, service.ErrNonPositiveAmount),
		errors.Is(err, service.ErrAmountTooLarge):
		return http.StatusBadRequest
	case errors.Is(err, repository.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, service.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, repository.ErrDuplicate),
		errors.Is(err, service.ErrAlreadyConfirmed),
		errors.Is(err, service.ErrDiscountExceedsDebt):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}
