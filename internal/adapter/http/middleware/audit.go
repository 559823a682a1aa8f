package middleware

import (
	"encoding/json"
	"net/http"

	"internal-wallet-service/internal/core/domain"
	"internal-wallet-service/internal/core/ports"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// AuditLog creates an audit middleware that logs successful write operations.
// Handlers may enrich the entry through CtxUserID, CtxResourceID and CtxSubject.
func AuditLog(auditSvc ports.AuditService) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		status := c.Writer.Status()
		if status < 200 || status >= 300 {
			return
		}
		if c.Request.Method != http.MethodPost {
			return
		}

		action, resourceType := mapRouteToAction(c.FullPath())
		if action == "" {
			return
		}

		var userID *uuid.UUID
		if v, exists := c.Get(CtxUserID); exists {
			if id, ok := v.(uuid.UUID); ok {
				userID = &id
			}
		}

		fields := map[string]interface{}{
			"method": c.Request.Method,
			"path":   c.Request.URL.Path,
			"status": status,
		}
		if subject := c.GetString(CtxSubject); subject != "" {
			fields["subject"] = subject
		}
		details, _ := json.Marshal(fields)

		auditSvc.Log(c.Request.Context(), &domain.AuditLog{
			UserID:       userID,
			Action:       action,
			ResourceType: resourceType,
			ResourceID:   c.GetString(CtxResourceID),
			IPAddress:    c.ClientIP(),
			Details:      string(details),
		})
	}
}

func mapRouteToAction(route string) (domain.AuditAction, string) {
	switch route {
	case "/api/v1/wallet/topup":
		return domain.AuditActionTopup, "transaction"
	case "/api/v1/wallet/bonus":
		return domain.AuditActionBonus, "transaction"
	case "/api/v1/wallet/spend":
		return domain.AuditActionSpend, "transaction"
	case "/api/v1/users":
		return domain.AuditActionCreateUser, "user"
	case "/api/v1/assets":
		return domain.AuditActionCreateAsset, "asset_type"
	}
	return "", ""
}
