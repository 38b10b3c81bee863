package handler

import (
	"net/http"
	"strconv"
)

const (
	defaultRecordsLimit = 50
	maxRecordsLimit     = 500
)

func (h *Handler) GetNotificationRecords(w http.ResponseWriter, r *http.Request) {
	limit := defaultRecordsLimit
	if param := r.URL.Query().Get("limit"); param != "" {
		n, err := strconv.Atoi(param)
		if err != nil || n <= 0 {
			h.errorResponse(w, r, "limit 必须是正整数")
			return
		}
		limit = min(n, maxRecordsLimit)
	}

	records, err := h.repository.GetRecentNotificationRecords(r.Context(), h.profile.Agency, limit)
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "获取通知记录成功", records)
}
