package server

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/example/creatorstore/pkg/cart"
	"github.com/example/creatorstore/pkg/catalog"
	"github.com/example/creatorstore/pkg/checkout"
	"github.com/example/creatorstore/pkg/config"
	"github.com/example/creatorstore/pkg/invoice"
	"github.com/example/creatorstore/pkg/models"
	"github.com/example/creatorstore/pkg/pricing"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"
)

// Header identifying the caller's cart slot. A new id is issued and echoed
// back when the caller does not send one.
const cartIDHeader = "X-Cart-ID"

// SlotProvider hands out the persistent storage slot backing one cart.
type SlotProvider interface {
	CartSlot(cartID string) cart.Storage
}

type Server struct {
	config     *config.Config
	catalog    *catalog.Store
	slots      SlotProvider
	dispatcher checkout.Dispatcher
	logger     *zap.Logger
	router     *gin.Engine
}

func NewServer(cfg *config.Config, cat *catalog.Store, slots SlotProvider, dispatcher checkout.Dispatcher, logger *zap.Logger) *Server {
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(loggerMiddleware(logger))

	return &Server{
		config:     cfg,
		catalog:    cat,
		slots:      slots,
		dispatcher: dispatcher,
		logger:     logger,
		router:     router,
	}
}

func (s *Server) SetupRoutes() {
	// Health check
	s.router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// API v1 routes
	v1 := s.router.Group("/api/v1")
	{
		// Catalog routes
		cat := v1.Group("/catalog")
		{
			cat.GET("", s.getCatalog)
			cat.GET("/categories", s.listCategories)
			cat.GET("/categories/:id/items", s.categoryItems)
			cat.GET("/products", s.listProducts)
			cat.GET("/products/:id", s.getProduct)
			cat.GET("/kits", s.listKits)
			cat.GET("/kits/:id", s.getKit)
			cat.GET("/search", s.search)
		}

		// Cart routes
		ct := v1.Group("/cart")
		{
			ct.GET("", s.getCart)
			ct.POST("/items", s.addCartItem)
			ct.PUT("/items/:index", s.updateCartItem)
			ct.DELETE("/items/:index", s.removeCartItem)
			ct.DELETE("", s.clearCart)
		}

		// Checkout routes
		co := v1.Group("/checkout")
		{
			co.GET("/quote", s.quote)
			co.POST("", s.submitCheckout)
		}
	}

	// Swagger
	s.router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
}

func (s *Server) Start() error {
	addr := fmt.Sprintf("%s:%d", s.config.Server.Host, s.config.Server.Port)
	s.logger.Info("Storefront server starting", zap.String("address", addr))
	return s.router.Run(addr)
}

// Router exposes the handler for tests.
func (s *Server) Router() http.Handler {
	return s.router
}

func (s *Server) getCatalog(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"categories": s.catalog.Categories(),
		"products":   s.catalog.Products(),
		"kits":       s.catalog.Kits(),
	})
}

func (s *Server) listCategories(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"categories": s.catalog.Categories()})
}

func (s *Server) listProducts(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"products": s.catalog.Products()})
}

func (s *Server) listKits(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"kits": s.catalog.Kits()})
}

func (s *Server) getProduct(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid product id"})
		return
	}

	ref := catalog.ProductRef(id)
	item, err := s.catalog.Lookup(ref)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "product not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"product":   item,
		"suggested": s.catalog.Suggested(ref, 4),
	})
}

func (s *Server) getKit(c *gin.Context) {
	ref := catalog.KitRef(c.Param("id"))
	item, err := s.catalog.Lookup(ref)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "kit not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"kit":       item,
		"suggested": s.catalog.Suggested(ref, 4),
	})
}

func (s *Server) search(c *gin.Context) {
	products, kits := s.catalog.Search(c.Query("q"))
	c.JSON(http.StatusOK, gin.H{
		"products": products,
		"kits":     kits,
	})
}

func (s *Server) categoryItems(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid category id"})
		return
	}

	products, kits := s.catalog.FilterByCategory(id)
	c.JSON(http.StatusOK, gin.H{
		"products": products,
		"kits":     kits,
	})
}

// cartStore binds the request's cart slot, issuing a fresh cart id when the
// caller has none yet.
func (s *Server) cartStore(c *gin.Context) *cart.Store {
	cartID := c.GetHeader(cartIDHeader)
	if cartID == "" {
		cartID = uuid.NewString()
	}
	c.Header(cartIDHeader, cartID)
	return cart.NewStore(c.Request.Context(), s.catalog, s.slots.CartSlot(cartID))
}

func (s *Server) getCart(c *gin.Context) {
	ct := s.cartStore(c)
	items := ct.Items()
	quote := pricing.Calculate(items, "", s.config.Shipping)

	c.JSON(http.StatusOK, gin.H{
		"items":    items,
		"count":    ct.Count(),
		"subtotal": quote.Subtotal,
	})
}

type addItemRequest struct {
	ID       string          `json:"id" binding:"required"`
	Type     models.ItemType `json:"type" binding:"required"`
	Quantity int             `json:"quantity"`
}

func (s *Server) addCartItem(c *gin.Context) {
	var req addItemRequest
	if err := c.BindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ct := s.cartStore(c)
	err := ct.Add(c.Request.Context(), models.ItemRef{ID: req.ID, Type: req.Type}, req.Quantity)
	switch {
	case errors.Is(err, catalog.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "item not found"})
		return
	case errors.Is(err, cart.ErrOutOfStock):
		c.JSON(http.StatusConflict, gin.H{"error": "This item is out of stock"})
		return
	case err != nil:
		s.logger.Error("Failed to add cart item", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to update cart"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"items": ct.Items(),
		"count": ct.Count(),
	})
}

type updateItemRequest struct {
	Quantity int `json:"quantity"`
}

func (s *Server) updateCartItem(c *gin.Context) {
	index, err := strconv.Atoi(c.Param("index"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid cart index"})
		return
	}

	var req updateItemRequest
	if err := c.BindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ct := s.cartStore(c)
	if err := ct.SetQuantity(c.Request.Context(), index, req.Quantity); err != nil {
		s.cartMutationError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"items": ct.Items(),
		"count": ct.Count(),
	})
}

func (s *Server) removeCartItem(c *gin.Context) {
	index, err := strconv.Atoi(c.Param("index"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid cart index"})
		return
	}

	ct := s.cartStore(c)
	if err := ct.Remove(c.Request.Context(), index); err != nil {
		s.cartMutationError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"items": ct.Items(),
		"count": ct.Count(),
	})
}

func (s *Server) clearCart(c *gin.Context) {
	ct := s.cartStore(c)
	if err := ct.Clear(c.Request.Context()); err != nil {
		s.logger.Error("Failed to clear cart", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to update cart"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": []models.CartItem{}, "count": 0})
}

func (s *Server) cartMutationError(c *gin.Context, err error) {
	if errors.Is(err, cart.ErrInvalidIndex) {
		c.JSON(http.StatusNotFound, gin.H{"error": "cart item not found"})
		return
	}
	s.logger.Error("Failed to update cart", zap.Error(err))
	c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to update cart"})
}

// quote previews shipping and total for a candidate payment method, the way
// the checkout page re-prices when the customer flips the payment selector.
func (s *Server) quote(c *gin.Context) {
	ct := s.cartStore(c)
	method := models.PaymentMethod(c.Query("payment_method"))
	c.JSON(http.StatusOK, pricing.Calculate(ct.Items(), method, s.config.Shipping))
}

func (s *Server) submitCheckout(c *gin.Context) {
	ct := s.cartStore(c)
	flow := checkout.NewFlow(ct, s.config.Shipping, s.dispatcher, s.logger)

	if err := flow.BeginCheckout(); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Your cart is empty"})
		return
	}

	form := checkout.Form{
		Name:          c.PostForm("name"),
		Phone:         c.PostForm("phone"),
		Email:         c.PostForm("email"),
		Address:       c.PostForm("address"),
		PaymentMethod: models.PaymentMethod(c.PostForm("payment_method")),
		UTRNumber:     c.PostForm("utr_number"),
	}

	if file, err := c.FormFile("payment_screenshot"); err == nil {
		f, err := file.Open()
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "failed to read payment screenshot"})
			return
		}
		defer f.Close()
		form.Screenshot = f
	}

	record, err := flow.Submit(c.Request.Context(), form)
	if err != nil {
		var verr *checkout.ValidationError
		if errors.As(err, &verr) {
			c.JSON(http.StatusBadRequest, gin.H{
				"error":  "Please fill in all required fields",
				"fields": verr.Fields,
			})
			return
		}
		s.logger.Error("Checkout failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to complete order"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"orderId":  record.OrderID,
		"date":     record.Date,
		"subtotal": record.Subtotal,
		"shipping": record.Shipping,
		"total":    record.Total,
		"invoice":  invoice.Filename(record.OrderID),
	})
}

func loggerMiddleware(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		query := c.Request.URL.RawQuery

		c.Next()

		logger.Info("HTTP request",
			zap.String("method", c.Request.Method),
			zap.String("path", path),
			zap.String("query", query),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)),
		)
	}
}
