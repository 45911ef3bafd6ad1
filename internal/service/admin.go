package service

import (
	"context"
	"encoding/json"

	"go.uber.org/zap"

	"github.com/PrincipieCyupe/tyi/internal/models"
	appErrors "github.com/PrincipieCyupe/tyi/pkg/errors"
)

type auditRecorder interface {
	Create(ctx context.Context, log *models.AuditLog) error
}

func requireAdmin(admin *models.AdminPrincipal) error {
	if admin == nil {
		return appErrors.Clone(appErrors.ErrForbidden, "admin access required")
	}
	return nil
}

// recordAudit stores an audit entry for an admin action. Failures are logged only.
func recordAudit(ctx context.Context, recorder auditRecorder, logger *zap.Logger, admin *models.AdminPrincipal, action, resource, resourceID string, values interface{}) {
	if recorder == nil {
		return
	}
	entry := &models.AuditLog{Action: action, Resource: resource}
	if resourceID != "" {
		entry.ResourceID = &resourceID
	}
	if admin != nil && admin.Subject != "" {
		subject := admin.Subject
		entry.UserID = &subject
	}
	if meta, ok := RequestMetaFrom(ctx); ok {
		entry.IPAddress = meta.IP
		entry.UserAgent = meta.UserAgent
	}
	if values != nil {
		if raw, err := json.Marshal(values); err == nil {
			entry.NewValues = raw
		}
	}
	if err := recorder.Create(ctx, entry); err != nil {
		logger.Warn("failed to record audit log", zap.String("action", action), zap.Error(err))
	}
}

type requestMetaKey struct{}

// RequestMeta carries caller network details for audit records.
type RequestMeta struct {
	IP        string
	UserAgent string
}

// WithRequestMeta attaches request metadata to ctx.
func WithRequestMeta(ctx context.Context, meta RequestMeta) context.Context {
	return context.WithValue(ctx, requestMetaKey{}, meta)
}

// RequestMetaFrom extracts request metadata stored by WithRequestMeta.
func RequestMetaFrom(ctx context.Context) (RequestMeta, bool) {
	meta, ok := ctx.Value(requestMetaKey{}).(RequestMeta)
	return meta, ok
}
