package services

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"firebase.google.com/go/messaging"

	"github.com/Andrew-C-BOS/WilsonTool-sub001/internal/models"
)

// NotificationService pushes lifecycle updates to the tenant's and
// landlord's devices over FCM. Delivery is best effort: a failed push
// never blocks a status transition.
type NotificationService struct {
	Client *messaging.Client
	DB     *sql.DB
	Logger *slog.Logger
}

var statusTitles = map[string]string{
	"submitted":      "Application submitted",
	"admin_screened": "Application screened",
	"approved_high":  "Application approved",
	"rejected":       "Application rejected",
	"terms_set":      "Lease terms are ready",
	"min_due":        "Move-in payment due",
	"min_paid":       "Move-in minimum received",
	"countersigned":  "Lease countersigned",
	"occupied":       "Move-in confirmed",
	"withdrawn":      "Application withdrawn",
}

// StatusChanged notifies both parties of a lifecycle change.
func (s *NotificationService) StatusChanged(ctx context.Context, app models.Application, status string) error {
	if s.Client == nil {
		return nil
	}
	title, ok := statusTitles[status]
	if !ok {
		title = "Application updated"
	}
	body := fmt.Sprintf("Application %s is now %s", app.ID, status)

	var lastErr error
	for _, userID := range []int{app.TenantUserID, app.LandlordUserID} {
		tokens, err := s.tokensForUser(ctx, userID)
		if err != nil {
			lastErr = err
			continue
		}
		for _, token := range tokens {
			if err := s.send(ctx, token, title, body, app.ID.String(), status); err != nil {
				if s.Logger != nil {
					s.Logger.Warn("push failed", "user_id", userID, "err", err)
				}
				lastErr = err
			}
		}
	}
	return lastErr
}

func (s *NotificationService) send(ctx context.Context, token, title, body, appID, status string) error {
	message := &messaging.Message{
		Token: token,
		Notification: &messaging.Notification{
			Title: title,
			Body:  body,
		},
		Data: map[string]string{
			"application_id": appID,
			"status":         status,
		},
		Android: &messaging.AndroidConfig{
			Priority: "high",
		},
		APNS: &messaging.APNSConfig{
			Headers: map[string]string{
				"apns-priority": "10",
			},
			Payload: &messaging.APNSPayload{
				Aps: &messaging.Aps{
					Alert: &messaging.ApsAlert{
						Title: title,
						Body:  body,
					},
					Sound: "default",
				},
			},
		},
	}
	_, err := s.Client.Send(ctx, message)
	return err
}

func (s *NotificationService) tokensForUser(ctx context.Context, userID int) ([]string, error) {
	rows, err := s.DB.QueryContext(ctx,
		`SELECT token FROM notify_tokens WHERE user_id = $1`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tokens []string
	for rows.Next() {
		var token string
		if err := rows.Scan(&token); err != nil {
			return nil, err
		}
		tokens = append(tokens, token)
	}
	return tokens, rows.Err()
}

// RegisterToken stores a device token for a user.
func (s *NotificationService) RegisterToken(ctx context.Context, userID int, token string) error {
	_, err := s.DB.ExecContext(ctx,
		`INSERT INTO notify_tokens (user_id, token) VALUES ($1, $2) ON CONFLICT (token) DO NOTHING`,
		userID, token)
	return err
}

// DeleteToken removes a device token.
func (s *NotificationService) DeleteToken(ctx context.Context, token string) error {
	_, err := s.DB.ExecContext(ctx, `DELETE FROM notify_tokens WHERE token = $1`, token)
	return err
}
