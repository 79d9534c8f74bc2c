package identity

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labtrack/labtrack/internal/shared"
)

// Webhook timestamp tolerance; events older or newer than this are rejected
// to blunt replay.
const webhookTolerance = 5 * time.Minute

// ProviderUser carries the fields the lifecycle events deliver.
type ProviderUser struct {
	Handle string
	Name   string
	Email  string
}

// UserSyncer applies provider lifecycle events to the user collection.
type UserSyncer interface {
	UpsertFromProvider(ctx context.Context, user ProviderUser) error
	DeleteByHandle(ctx context.Context, handle string) error
}

// SnapshotClearer drops persisted permission snapshots for departed users.
type SnapshotClearer interface {
	Clear(ctx context.Context, key string) error
}

// Webhook consumes the identity provider's user-lifecycle events
// (user.created / user.updated / user.deleted). Signature verification
// follows the provider's scheme: HMAC-SHA256 over "id.timestamp.payload"
// with a base64 secret, signatures delivered space-separated in the
// webhook-signature header as "v1,<base64>".
type Webhook struct {
	secret    []byte
	users     UserSyncer
	snapshots SnapshotClearer
	logger    *slog.Logger
	now       func() time.Time
}

// NewWebhook builds the webhook handler. The secret may carry the
// provider's "whsec_" prefix. snapshots may be nil.
func NewWebhook(secret string, users UserSyncer, snapshots SnapshotClearer, logger *slog.Logger) (*Webhook, error) {
	raw := strings.TrimPrefix(secret, "whsec_")
	key, err := base64.StdEncoding.DecodeString(raw)
	if err != nil {
		return nil, fmt.Errorf("identity: decode webhook secret: %w", err)
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Webhook{secret: key, users: users, snapshots: snapshots, logger: logger, now: time.Now}, nil
}

type webhookEvent struct {
	Type string `json:"type"`
	Data struct {
		ID             string `json:"id"`
		FirstName      string `json:"first_name"`
		LastName       string `json:"last_name"`
		EmailAddresses []struct {
			EmailAddress string `json:"email_address"`
		} `json:"email_addresses"`
	} `json:"data"`
}

// ServeHTTP implements http.Handler.
func (h *Webhook) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(io.LimitReader(r.Body, 1<<20))
	if err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}
	if err := h.verify(r.Header, body); err != nil {
		h.logger.Warn("webhook verification failed", slog.Any("error", err))
		http.Error(w, "invalid webhook signature", http.StatusUnauthorized)
		return
	}

	var event webhookEvent
	if err := json.Unmarshal(body, &event); err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}

	switch event.Type {
	case "user.created", "user.updated":
		user := ProviderUser{
			Handle: event.Data.ID,
			Name:   strings.TrimSpace(event.Data.FirstName + " " + event.Data.LastName),
		}
		if len(event.Data.EmailAddresses) > 0 {
			user.Email = event.Data.EmailAddresses[0].EmailAddress
		}
		if user.Handle == "" || user.Email == "" {
			h.logger.Error("webhook user payload incomplete", slog.String("type", event.Type))
			// Acknowledge anyway; the provider retries forever otherwise.
			w.WriteHeader(http.StatusOK)
			return
		}
		if err := h.users.UpsertFromProvider(r.Context(), user); err != nil {
			h.logger.Error("webhook upsert user", slog.Any("error", err))
			http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
			return
		}
	case "user.deleted":
		if event.Data.ID == "" {
			w.WriteHeader(http.StatusOK)
			return
		}
		if err := h.users.DeleteByHandle(r.Context(), event.Data.ID); err != nil {
			h.logger.Error("webhook delete user", slog.Any("error", err))
			http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
			return
		}
		if h.snapshots != nil {
			if err := h.snapshots.Clear(r.Context(), event.Data.ID); err != nil {
				h.logger.Warn("webhook clear snapshot", slog.Any("error", err))
			}
		}
	default:
		h.logger.Info("webhook event ignored", slog.String("type", event.Type))
	}
	w.WriteHeader(http.StatusOK)
}

func (h *Webhook) verify(header http.Header, body []byte) error {
	id := header.Get("webhook-id")
	timestamp := header.Get("webhook-timestamp")
	signatures := header.Get("webhook-signature")
	if id == "" || timestamp == "" || signatures == "" {
		return shared.ErrInvalidSignature
	}

	ts, err := strconv.ParseInt(timestamp, 10, 64)
	if err != nil {
		return shared.ErrInvalidSignature
	}
	drift := h.now().Sub(time.Unix(ts, 0))
	if drift > webhookTolerance || drift < -webhookTolerance {
		return shared.ErrStaleTimestamp
	}

	mac := hmac.New(sha256.New, h.secret)
	fmt.Fprintf(mac, "%s.%s.%s", id, timestamp, body)
	expected := base64.StdEncoding.EncodeToString(mac.Sum(nil))

	for _, candidate := range strings.Fields(signatures) {
		parts := strings.SplitN(candidate, ",", 2)
		if len(parts) != 2 || parts[0] != "v1" {
			continue
		}
		if subtle.ConstantTimeCompare([]byte(parts[1]), []byte(expected)) == 1 {
			return nil
		}
	}
	return shared.ErrInvalidSignature
}
