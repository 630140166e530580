package utils

import (
	"fmt"

	"github.com/chisomo-dev/eddahpos/models"
	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// Session keys. The cart and its checkout correlation live only in the
// cashier's session; they are never persisted past it.
const (
	SessionKeyUserID    = "user_id"
	SessionKeyUserEmail = "user_email"
	SessionKeyUserName  = "user_name"
	SessionKeyRole      = "role"
	SessionKeyCart      = "pos_cart"
	SessionKeyTxRef     = "transaction_ref"
	SessionKeyCSRF      = "csrf_token"
)

// GetCart loads the session cart, materializing an empty one on first use.
func GetCart(c *gin.Context) *models.Cart {
	session := sessions.Default(c)
	if raw := session.Get(SessionKeyCart); raw != nil {
		if cart, ok := raw.(models.Cart); ok {
			return &cart
		}
		if cart, ok := raw.(*models.Cart); ok {
			return cart
		}
	}
	return models.NewCart()
}

// SaveCart writes the cart back into the session.
func SaveCart(c *gin.Context, cart *models.Cart) error {
	session := sessions.Default(c)
	session.Set(SessionKeyCart, *cart)
	if err := session.Save(); err != nil {
		return fmt.Errorf("failed to save cart to session: %v", err)
	}
	return nil
}

// ClearCheckout empties the cart and discards the cached transaction_ref in
// one session write. Called on successful checkout and on explicit clear.
func ClearCheckout(c *gin.Context) error {
	session := sessions.Default(c)
	session.Set(SessionKeyCart, *models.NewCart())
	session.Delete(SessionKeyTxRef)
	if err := session.Save(); err != nil {
		return fmt.Errorf("failed to clear checkout session state: %v", err)
	}
	return nil
}

// BindTxRef stores the pending order's transaction_ref in the session for
// the gateway handoff.
func BindTxRef(c *gin.Context, txRef string) error {
	session := sessions.Default(c)
	session.Set(SessionKeyTxRef, txRef)
	return session.Save()
}

// PendingTxRef returns the transaction_ref bound to the session cart, if any.
func PendingTxRef(c *gin.Context) string {
	session := sessions.Default(c)
	if raw := session.Get(SessionKeyTxRef); raw != nil {
		if txRef, ok := raw.(string); ok {
			return txRef
		}
	}
	return ""
}

// EnsureCSRFToken returns the session CSRF token, minting one if absent.
func EnsureCSRFToken(c *gin.Context) (string, error) {
	session := sessions.Default(c)
	if raw := session.Get(SessionKeyCSRF); raw != nil {
		if token, ok := raw.(string); ok && token != "" {
			return token, nil
		}
	}
	token := uuid.New().String()
	session.Set(SessionKeyCSRF, token)
	if err := session.Save(); err != nil {
		return "", fmt.Errorf("failed to save CSRF token: %v", err)
	}
	return token, nil
}

// ValidateCSRFToken checks a submitted token against the session token.
func ValidateCSRFToken(c *gin.Context, token string) bool {
	session := sessions.Default(c)
	raw := session.Get(SessionKeyCSRF)
	stored, ok := raw.(string)
	return ok && stored != "" && stored == token
}

// SessionUserID returns the logged-in cashier's user ID, or zero.
func SessionUserID(c *gin.Context) uint {
	session := sessions.Default(c)
	if raw := session.Get(SessionKeyUserID); raw != nil {
		if id, ok := raw.(uint); ok {
			return id
		}
	}
	return 0
}

// SessionUserEmail returns the logged-in cashier's email, or empty.
func SessionUserEmail(c *gin.Context) string {
	session := sessions.Default(c)
	if raw := session.Get(SessionKeyUserEmail); raw != nil {
		if email, ok := raw.(string); ok {
			return email
		}
	}
	return ""
}
