package handlers

import (
	"context"
	"encoding/json"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/vinmart/admin-console/internal/apiclient"
	"github.com/vinmart/admin-console/internal/auth"
	"github.com/vinmart/admin-console/internal/repository"
	"github.com/vinmart/admin-console/internal/session"
)

const (
	msgStatsFailed = "Failed to fetch dashboard stats"
	activityLimit  = 10
)

// ActivityFeed lists recent console actions.
type ActivityFeed interface {
	Recent(ctx context.Context, limit int) ([]repository.AuditEvent, error)
}

type activityRow struct {
	Action  string
	Subject string
	At      string
}

// DashboardHandler serves the landing page.
type DashboardHandler struct {
	Page
	dashboard *apiclient.DashboardGroup
	profile   *apiclient.AuthGroup
	sessions  *session.Manager
	activity  ActivityFeed
}

// NewDashboardHandler constructs handler. activity may be nil.
func NewDashboardHandler(page Page, dashboard *apiclient.DashboardGroup, profile *apiclient.AuthGroup, sessions *session.Manager, activity ActivityFeed) *DashboardHandler {
	return &DashboardHandler{Page: page, dashboard: dashboard, profile: profile, sessions: sessions, activity: activity}
}

// Show handles GET /. The profile is fetched once per session and cached.
func (h *DashboardHandler) Show(c *fiber.Ctx) error {
	sess, _ := auth.SessionFromContext(c)
	if len(sess.Profile()) == 0 {
		if err := h.refreshProfile(c, sess); err != nil {
			if h.revoked(c, err) {
				return auth.RedirectToLogin(c)
			}
			h.logger.Warn("profile fetch failed", zap.Error(err))
		}
	}

	data := ViewData{}
	stats, err := apiclient.FlattenStats(h.dashboard.Stats(c.UserContext()))
	if err != nil {
		if h.revoked(c, err) {
			return auth.RedirectToLogin(c)
		}
		data["error"] = apiclient.MessageOr(err, msgStatsFailed)
	}
	data["stats"] = stats
	data["activity"] = h.recentActivity(c)
	return h.render(c, "dashboard/index", "Dashboard", data)
}

func (h *DashboardHandler) recentActivity(c *fiber.Ctx) []activityRow {
	if h.activity == nil {
		return nil
	}
	recent, err := h.activity.Recent(c.UserContext(), activityLimit)
	if err != nil {
		h.logger.Warn("audit feed unavailable", zap.Error(err))
		return nil
	}
	rows := make([]activityRow, 0, len(recent))
	for _, e := range recent {
		rows = append(rows, activityRow{
			Action:  e.Action,
			Subject: e.SubjectID,
			At:      e.CreatedAt.Format("Jan 2 15:04"),
		})
	}
	return rows
}

func (h *DashboardHandler) refreshProfile(c *fiber.Ctx, sess *session.Session) error {
	raw, err := h.profile.Profile(c.UserContext())
	if err != nil {
		return err
	}
	profile := unwrapProfile(raw)
	if err := h.sessions.UpdateProfile(c.UserContext(), sess.ID(), profile); err != nil {
		return err
	}
	fresh, err := h.sessions.Load(c.UserContext(), sess.ID())
	if err != nil {
		return err
	}
	auth.Attach(c, fresh)
	return nil
}

// unwrapProfile accepts {"user":{...}}, {"data":{...}} or the profile itself.
func unwrapProfile(raw json.RawMessage) json.RawMessage {
	var wrapper struct {
		User json.RawMessage `json:"user"`
		Data json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(raw, &wrapper); err == nil {
		switch {
		case len(wrapper.User) > 0 && wrapper.User[0] == '{':
			return wrapper.User
		case len(wrapper.Data) > 0 && wrapper.Data[0] == '{':
			return wrapper.Data
		}
	}
	return raw
}
