package scoreboard

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"math"
	"net/http"
	"strconv"
	"time"

	"github.com/jacl-coder/BaseDefender-Server/internal/models"
	"github.com/jacl-coder/BaseDefender-Server/pkg/auth"
)

// ReceiptVerifier 校验服务器签发的结算凭证
type ReceiptVerifier interface {
	VerifyReceipt(token string) (*auth.ReceiptClaims, error)
}

// SubmitRequest 提交成绩请求，score 和 wave 必须是数字
type SubmitRequest struct {
	Name    string   `json:"name"`
	Score   *float64 `json:"score"`
	Wave    *float64 `json:"wave"`
	Game    string   `json:"game"`
	Receipt string   `json:"receipt,omitempty"`
}

// SubmitResponse 提交结果
type SubmitResponse struct {
	Success bool               `json:"success"`
	Message string             `json:"message"`
	Score   *models.ScoreEntry `json:"score,omitempty"`
	Code    string             `json:"code,omitempty"`
}

// Handler 排行榜HTTP处理器
type Handler struct {
	store      Store
	receipts   ReceiptVerifier
	ledger     ReceiptLedger
	maxEntries int
	now        func() time.Time

	// OnSubmit 成绩保存成功后调用，用于清理缓存
	OnSubmit func()
}

// NewHandler 创建排行榜处理器，receipts 为空时不校验凭证。
// 存储自身能登记凭证时用它防止重复提交，否则使用进程内登记
func NewHandler(store Store, receipts ReceiptVerifier, maxEntries int) *Handler {
	if maxEntries <= 0 {
		maxEntries = models.DefaultMaxEntries
	}
	ledger, ok := store.(ReceiptLedger)
	if !ok {
		ledger = NewMemoryLedger()
	}
	return &Handler{
		store:      store,
		receipts:   receipts,
		ledger:     ledger,
		maxEntries: maxEntries,
		now:        time.Now,
	}
}

// RegisterHandlers 注册HTTP处理器
func (h *Handler) RegisterHandlers(mux *http.ServeMux) {
	mux.HandleFunc("/scores", h.handleScores)
}

func (h *Handler) handleScores(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		h.handleList(w, r)
	case http.MethodPost:
		h.handleSubmit(w, r)
	default:
		h.sendErrorResponse(w, "仅支持GET和POST方法", "method_not_allowed", http.StatusMethodNotAllowed)
	}
}

// handleList GET /scores?game=&limit=
func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	game := models.GameMode(r.URL.Query().Get("game"))
	if game != "" && !game.Valid() {
		h.sendErrorResponse(w, "未知的游戏", "invalid_game", http.StatusBadRequest)
		return
	}

	limit := h.maxEntries
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			h.sendErrorResponse(w, "无效的limit参数", "invalid_limit", http.StatusBadRequest)
			return
		}
		limit = min(n, h.maxEntries)
	}

	entries, err := h.store.List(r.Context(), game, limit)
	if err != nil {
		log.Printf("读取排行榜失败: %v", err)
		h.sendErrorResponse(w, "读取排行榜失败", "load_failed", http.StatusInternalServerError)
		return
	}
	if entries == nil {
		entries = []models.ScoreEntry{}
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(entries); err != nil {
		log.Printf("编码响应失败: %v", err)
	}
}

// handleSubmit POST /scores
func (h *Handler) handleSubmit(w http.ResponseWriter, r *http.Request) {
	var req SubmitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.sendErrorResponse(w, "无效的请求数据", "invalid_score", http.StatusBadRequest)
		return
	}

	entry, err := h.validate(r.Context(), req)
	switch {
	case errors.Is(err, ErrReceiptUsed):
		h.sendErrorResponse(w, err.Error(), "receipt_used", http.StatusConflict)
		return
	case errors.Is(err, ErrInvalidScore):
		h.sendErrorResponse(w, err.Error(), "invalid_score", http.StatusBadRequest)
		return
	case err != nil:
		log.Printf("校验成绩失败: %v", err)
		h.sendErrorResponse(w, "校验成绩失败", "save_failed", http.StatusInternalServerError)
		return
	}

	if err := h.store.Add(r.Context(), entry); err != nil {
		log.Printf("保存成绩失败: %v", err)
		h.sendErrorResponse(w, "保存成绩失败", "save_failed", http.StatusInternalServerError)
		return
	}
	if h.OnSubmit != nil {
		h.OnSubmit()
	}

	log.Printf("新成绩: %s %d (第%d波, %s)", entry.Name, entry.Score, entry.Wave, entry.Game)
	h.sendJSON(w, http.StatusOK, SubmitResponse{Success: true, Message: "成绩已保存", Score: &entry})
}

// toCount 分数和波次必须是 int32 范围内的非负整数
func toCount(v *float64) (int, bool) {
	if v == nil || *v < 0 || *v > math.MaxInt32 || *v != math.Trunc(*v) {
		return 0, false
	}
	return int(*v), true
}

// validate 校验请求并生成条目，带凭证的提交必须与凭证内容一致且凭证未使用过
func (h *Handler) validate(ctx context.Context, req SubmitRequest) (models.ScoreEntry, error) {
	score, ok := toCount(req.Score)
	if !ok {
		return models.ScoreEntry{}, ErrInvalidScore
	}
	wave, ok := toCount(req.Wave)
	if !ok {
		return models.ScoreEntry{}, ErrInvalidScore
	}

	entry, err := Normalize(models.ScoreEntry{
		Name:  req.Name,
		Score: score,
		Wave:  wave,
		Game:  models.GameMode(req.Game),
	}, h.now())
	if err != nil {
		return models.ScoreEntry{}, err
	}

	if req.Receipt == "" || h.receipts == nil {
		return entry, nil
	}

	claims, err := h.receipts.VerifyReceipt(req.Receipt)
	if err != nil {
		return models.ScoreEntry{}, errors.Join(ErrInvalidScore, err)
	}
	if claims.Score != entry.Score || claims.Wave != entry.Wave || models.GameMode(claims.Game) != entry.Game {
		return models.ScoreEntry{}, ErrInvalidScore
	}
	if claims.ID == "" || claims.ExpiresAt == nil {
		return models.ScoreEntry{}, ErrInvalidScore
	}

	first, err := h.ledger.Claim(ctx, claims.ID, claims.ExpiresAt.Time)
	if err != nil {
		return models.ScoreEntry{}, err
	}
	if !first {
		return models.ScoreEntry{}, ErrReceiptUsed
	}
	entry.Verified = true
	return entry, nil
}

func (h *Handler) sendErrorResponse(w http.ResponseWriter, message, code string, statusCode int) {
	h.sendJSON(w, statusCode, SubmitResponse{Success: false, Message: message, Code: code})
}

func (h *Handler) sendJSON(w http.ResponseWriter, statusCode int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("编码响应失败: %v", err)
	}
}
