package requests

import (
	"strings"
	"time"

	"github.com/angelmondragon/nazorat-backend/pkg/db/models"
	"github.com/angelmondragon/nazorat-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/nazorat-backend/pkg/errors"
)

// EffectiveStatus derives the visible lifecycle state from the stored status
// and the first admin-read timestamp. Completed wins; otherwise an unread
// request is new.
func EffectiveStatus(raw enums.RequestStatus, adminReadAt *time.Time) enums.EffectiveStatus {
	if raw == enums.RequestStatusCompleted {
		return enums.EffectiveStatusCompleted
	}
	if adminReadAt == nil {
		return enums.EffectiveStatusNew
	}
	return enums.EffectiveStatusUnderReview
}

// EffectiveOf is EffectiveStatus applied to a stored row.
func EffectiveOf(req *models.Request) enums.EffectiveStatus {
	if req == nil {
		return enums.EffectiveStatusNew
	}
	return EffectiveStatus(req.Status, req.AdminReadAt)
}

// ValidateStatus accepts only under_review and completed.
func ValidateStatus(value string) (enums.RequestStatus, error) {
	status, err := enums.ParseRequestStatus(strings.TrimSpace(value))
	if err != nil {
		return "", pkgerrors.Wrap(pkgerrors.CodeInvalidStatus, err, "status must be under_review or completed").
			WithDetails(map[string]any{"status": value, "allowed": enums.StorableRequestStatuses()})
	}
	return status, nil
}

// markSeen stamps admin_read_at the first time an admin touches the request.
// It never clears or moves an existing stamp. Reports whether it changed.
func markSeen(req *models.Request, now time.Time) bool {
	if req.AdminReadAt != nil {
		return false
	}
	at := now.UTC()
	req.AdminReadAt = &at
	return true
}

func applyStatus(req *models.Request, status enums.RequestStatus, now time.Time) {
	markSeen(req, now)
	req.Status = status
}

// applyReply sets or clears the reply pair and picks the status from the
// completion checkbox. A nil or blank text clears any existing reply.
func applyReply(req *models.Request, text *string, markCompleted bool, now time.Time) {
	markSeen(req, now)

	if text != nil && strings.TrimSpace(*text) != "" {
		trimmed := strings.TrimSpace(*text)
		at := now.UTC()
		req.Reply = &trimmed
		req.RepliedAt = &at
	} else {
		req.Reply = nil
		req.RepliedAt = nil
	}

	if markCompleted {
		req.Status = enums.RequestStatusCompleted
	} else {
		req.Status = enums.RequestStatusUnderReview
	}
}
