package api

import (
	"net/http"
	"time"

	"genius-keeper-backend/internal/supervisor"
	"genius-keeper-backend/pkg/config"

	"github.com/gin-gonic/gin"
)

// ScheduleSource describes the registered supervisor schedules.
type ScheduleSource interface {
	Entries() []supervisor.EntryInfo
	Location() *time.Location
}

// SupervisorSettings is the read-only view of how supervisors are configured.
type SupervisorSettings struct {
	Timezone               string                  `json:"timezone"`
	BusinessHoursStart     int                     `json:"business_hours_start"`
	BusinessHoursEnd       int                     `json:"business_hours_end"`
	OverdueRecipientEmail  string                  `json:"overdue_recipient_email"`
	OverdueNotifyAssignee  bool                    `json:"overdue_notify_assignee"`
	PendingOrderRecipients []string                `json:"pending_order_recipients"`
	PushBackend            string                  `json:"push_backend"`
	EventTransport         string                  `json:"event_transport"`
	Supervisors            []supervisor.EntryInfo `json:"supervisors"`
}

type SettingsHandler struct {
	cfg       *config.Config
	schedules ScheduleSource
}

func NewSettingsHandler(cfg *config.Config, schedules ScheduleSource) *SettingsHandler {
	return &SettingsHandler{cfg: cfg, schedules: schedules}
}

// GetSupervisorSettings returns schedules, time zone, business hours and recipients
// GET /api/settings/supervisors
func (h *SettingsHandler) GetSupervisorSettings(c *gin.Context) {
	settings := SupervisorSettings{
		Timezone:               h.schedules.Location().String(),
		BusinessHoursStart:     h.cfg.BusinessHoursStart,
		BusinessHoursEnd:       h.cfg.BusinessHoursEnd,
		OverdueRecipientEmail:  h.cfg.OverdueRecipientEmail,
		OverdueNotifyAssignee:  h.cfg.OverdueNotifyAssignee,
		PendingOrderRecipients: h.cfg.PendingOrderRecipients,
		PushBackend:            h.cfg.PushBackend,
		EventTransport:         h.cfg.EventTransport,
		Supervisors:            h.schedules.Entries(),
	}
	if settings.PendingOrderRecipients == nil {
		settings.PendingOrderRecipients = []string{}
	}
	c.JSON(http.StatusOK, settings)
}
