package worker

import (
	"github.com/vinmart/admin-console/internal/service"
)

// StartAuditWorker registers the audit trail handlers.
func StartAuditWorker(auditService *service.AuditService) {
	if auditService == nil {
		return
	}
	auditService.RegisterHandlers()
}
