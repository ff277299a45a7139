package match

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/jacl-coder/BaseDefender-Server/internal/models"
)

// MatchHandler 大厅处理器
type MatchHandler struct {
	service *MatchService
}

// NewMatchHandler 创建大厅处理器
func NewMatchHandler(service *MatchService) *MatchHandler {
	return &MatchHandler{
		service: service,
	}
}

// RegisterHandlers 注册HTTP处理器
func (h *MatchHandler) RegisterHandlers(mux *http.ServeMux) {
	mux.HandleFunc("/health", h.handleHealth)
	mux.HandleFunc("/match/join", h.handleJoin)
	mux.HandleFunc("/match/status", h.handleMatchStatus)
}

// handleHealth 处理健康检查请求
func (h *MatchHandler) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "仅支持GET方法", http.StatusMethodNotAllowed)
		return
	}

	if h.service == nil || h.service.rooms == nil {
		http.Error(w, "服务未初始化", http.StatusServiceUnavailable)
		return
	}

	w.WriteHeader(http.StatusOK)
	w.Write([]byte("OK"))
}

// 加入请求
type joinRequest struct {
	PlayerName string `json:"player_name"`
}

// 加入响应
type joinResponse struct {
	Success bool             `json:"success"`
	Message string           `json:"message"`
	RoomID  string           `json:"room_id,omitempty"`
	Room    *models.RoomInfo `json:"room,omitempty"`
}

// 大厅状态响应
type matchStatusResponse struct {
	Rooms    int                       `json:"rooms"`
	ByStatus map[models.RoomStatus]int `json:"by_status"`
}

// handleJoin 创建单人房间并返回房间ID
func (h *MatchHandler) handleJoin(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "仅支持POST方法", http.StatusMethodNotAllowed)
		return
	}

	var req joinRequest
	if r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			h.sendJSON(w, http.StatusBadRequest, joinResponse{Message: "无效的请求格式"})
			return
		}
	}

	info, err := h.service.Join(r.Context(), req.PlayerName)
	if err != nil {
		log.Printf("分配房间失败: %v", err)
		status := http.StatusInternalServerError
		if errors.Is(err, ErrGameUnavailable) {
			status = http.StatusBadGateway
		}
		h.sendJSON(w, status, joinResponse{Message: "分配房间失败"})
		return
	}

	h.sendJSON(w, http.StatusOK, joinResponse{
		Success: true,
		Message: "房间已创建",
		RoomID:  info.ID,
		Room:    &info,
	})
}

// handleMatchStatus 当前房间数量
func (h *MatchHandler) handleMatchStatus(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "仅支持GET方法", http.StatusMethodNotAllowed)
		return
	}

	byStatus, total, err := h.service.Status(r.Context())
	if err != nil {
		log.Printf("获取房间状态失败: %v", err)
		http.Error(w, "获取房间状态失败", http.StatusBadGateway)
		return
	}

	h.sendJSON(w, http.StatusOK, matchStatusResponse{Rooms: total, ByStatus: byStatus})
}

func (h *MatchHandler) sendJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("编码响应失败: %v", err)
	}
}
