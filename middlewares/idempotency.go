package middlewares

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/utils"
	"gorm.io/gorm"

	"handyman-backend/models"
)

// IdempotencyStore persists the first completed response per key.
type IdempotencyStore interface {
	// FindOrCreate returns the record for rec.Key, creating a pending one
	// (ResponseStatus == 0) when none exists yet.
	FindOrCreate(rec *models.IdempotencyKey) (*models.IdempotencyKey, error)
	// Complete stores the finished response for key.
	Complete(key string, status int, body []byte) error
}

// GormIdempotencyStore is the Postgres-backed IdempotencyStore.
type GormIdempotencyStore struct {
	DB *gorm.DB
}

func (s *GormIdempotencyStore) FindOrCreate(rec *models.IdempotencyKey) (*models.IdempotencyKey, error) {
	var existing models.IdempotencyKey
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("key = ?", rec.Key).First(&existing).Error; err == nil {
			return nil
		} else if err != gorm.ErrRecordNotFound {
			return err
		}
		if err := tx.Create(rec).Error; err != nil {
			// Unique race on key: another request created it first.
			return tx.Where("key = ?", rec.Key).First(&existing).Error
		}
		existing = *rec
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &existing, nil
}

func (s *GormIdempotencyStore) Complete(key string, status int, body []byte) error {
	now := time.Now().UTC()
	return s.DB.Model(&models.IdempotencyKey{}).
		Where("key = ?", key).
		Updates(map[string]any{
			"response_status": status,
			"response_body":   body,
			"completed_at":    &now,
		}).Error
}

// Idempotency processes Idempotency-Key for mutating HTTP methods. The first
// completed response for a key is stored and replayed on retries; the handler
// never re-runs for a replayed key. Key reuse with a different request is a
// conflict.
func Idempotency(store IdempotencyStore) fiber.Handler {
	return func(c *fiber.Ctx) error {
		method := strings.ToUpper(c.Method())
		if method != fiber.MethodPost && method != fiber.MethodPut && method != fiber.MethodPatch && method != fiber.MethodDelete {
			return c.Next()
		}

		// Copy before retaining: c.Get/c.OriginalURL alias fasthttp's
		// reused buffers, and the record outlives this request.
		key := utils.CopyString(strings.TrimSpace(c.Get("Idempotency-Key")))
		if key == "" {
			return c.Next()
		}
		if len(key) > 128 {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "Idempotency-Key too long"})
		}

		userID, _ := c.Locals("userID").(string)
		if userID == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "auth context missing"})
		}

		path := utils.CopyString(c.OriginalURL()) // includes query string

		// Deterministic request hash: method|path|body|user
		h := sha256.New()
		h.Write([]byte(method))
		h.Write([]byte{'\n'})
		h.Write([]byte(path))
		h.Write([]byte{'\n'})
		h.Write(c.Body())
		h.Write([]byte{'\n'})
		h.Write([]byte(userID))
		reqHash := hex.EncodeToString(h.Sum(nil))

		existing, err := store.FindOrCreate(&models.IdempotencyKey{
			Key:         key,
			RequestHash: reqHash,
			Method:      method,
			Path:        path,
			UserID:      userID,
		})
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "idempotency lookup failed")
		}

		if existing.RequestHash != reqHash {
			return fiber.NewError(fiber.StatusConflict, "Idempotency-Key reuse with different request")
		}
		if existing.ResponseStatus != 0 && existing.ResponseBody != nil {
			// Completed response stored: replay it without running the
			// handler again.
			c.Status(existing.ResponseStatus)
			return c.Send(existing.ResponseBody)
		}

		// Pending/in-progress: run the handler once.
		if err := c.Next(); err != nil {
			return err
		}

		// Store the response, best-effort.
		resp := c.Response().Body()
		blob := make([]byte, len(resp))
		copy(blob, resp)
		_ = store.Complete(key, c.Response().StatusCode(), blob)

		return nil
	}
}
