package api

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/Artfain/dat-exchange/core"
)

// Server translates HTTP requests into exchange operations. It carries no
// logic of its own beyond input presence checks and status-code mapping.
type Server struct {
	exchange *core.Exchange
	hub      *Hub
	log      zerolog.Logger
}

func NewServer(exchange *core.Exchange, hub *Hub, logger zerolog.Logger) *Server {
	return &Server{
		exchange: exchange,
		hub:      hub,
		log:      logger.With().Str("component", "api").Logger(),
	}
}

// Register mounts every route on the engine.
func (s *Server) Register(r *gin.Engine) {
	r.POST("/create_wallet", s.createWallet)
	r.POST("/create_asset", s.createAsset)
	r.POST("/list_for_sale", s.listForSale)
	r.POST("/buy_asset", s.buyAsset)
	r.POST("/transfer_currency", s.transferCurrency)

	r.GET("/mine", s.mine)
	r.GET("/marketplace", s.marketplace)
	r.GET("/assets", s.assets)
	r.GET("/user/:address", s.user)
	r.GET("/portfolio/:address", s.portfolio)
	r.GET("/chain", s.chain)
	r.GET("/stats", s.stats)

	if s.hub != nil {
		r.GET("/ws", s.hub.Handle)
	}
}

type createWalletRequest struct {
	UserAddress    string `json:"user_address" binding:"required"`
	InitialBalance *int64 `json:"initial_balance"`
}

func (s *Server) createWallet(c *gin.Context) {
	var req createWalletRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing user_address"})
		return
	}
	balance := core.DefaultInitialBalance
	if req.InitialBalance != nil {
		balance = *req.InitialBalance
	}
	w, err := s.exchange.CreateWallet(req.UserAddress, balance)
	if err != nil {
		msg := "Wallet already exists"
		if core.IsRejected(err) {
			msg = "Initial balance must not be negative"
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": msg})
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"message":         "Wallet created successfully",
		"address":         w.Address,
		"initial_balance": w.Balance,
	})
}

type createAssetRequest struct {
	AssetID        string            `json:"asset_id" binding:"required"`
	Name           string            `json:"name" binding:"required"`
	Description    string            `json:"description" binding:"required"`
	CreatorAddress string            `json:"creator_address" binding:"required"`
	AssetType      string            `json:"asset_type"`
	Metadata       map[string]string `json:"metadata"`
}

func (s *Server) createAsset(c *gin.Context) {
	var req createAssetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing required fields"})
		return
	}
	_, err := s.exchange.CreateAsset(req.AssetID, req.Name, req.Description, req.CreatorAddress, req.AssetType, req.Metadata)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Asset creation failed or creator not found"})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "Digital asset created successfully"})
}

type listForSaleRequest struct {
	AssetID       string `json:"asset_id" binding:"required"`
	SellerAddress string `json:"seller_address" binding:"required"`
	Price         int64  `json:"price" binding:"required"`
}

func (s *Server) listForSale(c *gin.Context) {
	var req listForSaleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing required fields"})
		return
	}
	_, err := s.exchange.ListForSale(req.AssetID, req.SellerAddress, req.Price)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Failed to list asset (not owned or already listed)"})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "Asset listed for sale successfully"})
}

type buyAssetRequest struct {
	AssetID      string `json:"asset_id" binding:"required"`
	BuyerAddress string `json:"buyer_address" binding:"required"`
}

func (s *Server) buyAsset(c *gin.Context) {
	var req buyAssetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing required fields"})
		return
	}
	receipt, err := s.exchange.BuyAsset(req.AssetID, req.BuyerAddress)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": reason(err)})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message": "Asset purchased successfully",
		"receipt": receipt,
	})
}

type transferRequest struct {
	FromAddress string `json:"from_address" binding:"required"`
	ToAddress   string `json:"to_address" binding:"required"`
	Amount      int64  `json:"amount" binding:"required"`
}

func (s *Server) transferCurrency(c *gin.Context) {
	var req transferRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing required fields"})
		return
	}
	receipt, err := s.exchange.TransferCurrency(req.FromAddress, req.ToAddress, req.Amount)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": reason(err)})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message": "Transfer completed successfully",
		"receipt": receipt,
	})
}

func (s *Server) mine(c *gin.Context) {
	block, reward := s.exchange.Mine()
	blocksSealed.Inc()
	c.JSON(http.StatusOK, gin.H{
		"message": "New Block Mined",
		"block":   block,
		"reward":  fmt.Sprintf("%d %s tokens", reward.Amount, core.BaseCurrency),
	})
}

func (s *Server) marketplace(c *gin.Context) {
	listings := s.exchange.Marketplace()
	c.JSON(http.StatusOK, gin.H{
		"marketplace":    listings,
		"total_listings": len(listings),
		"summary":        s.exchange.MarketSummary(),
	})
}

func (s *Server) assets(c *gin.Context) {
	assets := s.exchange.Assets()
	c.JSON(http.StatusOK, gin.H{
		"assets":       assets,
		"total_assets": len(assets),
	})
}

func (s *Server) user(c *gin.Context) {
	w, err := s.exchange.Wallet(c.Param("address"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": w})
}

func (s *Server) portfolio(c *gin.Context) {
	p, err := s.exchange.Portfolio(c.Param("address"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"portfolio": p})
}

func (s *Server) chain(c *gin.Context) {
	blocks := s.exchange.Chain()
	c.JSON(http.StatusOK, gin.H{
		"chain":  blocks,
		"length": len(blocks),
	})
}

func (s *Server) stats(c *gin.Context) {
	c.JSON(http.StatusOK, s.exchange.Stats())
}

// reason maps a ledger failure to the user-facing string for trade and
// transfer rejections.
func reason(err error) string {
	switch {
	case core.IsNotFound(err):
		return "User not found"
	case core.IsRejected(err):
		switch {
		case strings.HasPrefix(err.Error(), "insufficient balance"):
			return "Insufficient balance"
		case strings.HasPrefix(err.Error(), "amount must be positive"):
			return "Amount must be positive"
		default:
			return "Asset not available or buyer not found"
		}
	default:
		return err.Error()
	}
}
