package session

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/delus-studio/storefront/internal/domain/cart"
	"github.com/gorilla/sessions"
)

const (
	DefaultName = "storefront_session"
	cartKey     = "cart"
)

type Options struct {
	Name     string
	Secret   string
	MaxAge   int
	Secure   bool
	HTTPOnly bool
}

// CartStore keeps the cart in a signed cookie session.
type CartStore struct {
	store sessions.Store
	name  string
}

func NewCartStore(opts Options) (*CartStore, error) {
	if opts.Secret == "" {
		return nil, fmt.Errorf("session: secret key is required")
	}
	if opts.Name == "" {
		opts.Name = DefaultName
	}
	cs := sessions.NewCookieStore([]byte(opts.Secret))
	cs.Options = &sessions.Options{
		Path:     "/",
		MaxAge:   opts.MaxAge,
		Secure:   opts.Secure,
		HttpOnly: opts.HTTPOnly,
		SameSite: http.SameSiteLaxMode,
	}
	if opts.MaxAge > 0 {
		cs.MaxAge(opts.MaxAge)
	}
	return &CartStore{store: cs, name: opts.Name}, nil
}

// Load returns the session cart. A missing, tampered or undecodable cookie yields an empty cart.
func (s *CartStore) Load(r *http.Request) (*cart.Cart, error) {
	sess, err := s.store.Get(r, s.name)
	if err != nil {
		// sessions.Store.Get still returns a fresh session when the cookie cannot be decoded
		return cart.New(), nil
	}
	raw, ok := sess.Values[cartKey].(string)
	if !ok || raw == "" {
		return cart.New(), nil
	}
	var entries []cart.Entry
	if err := json.Unmarshal([]byte(raw), &entries); err != nil {
		return cart.New(), nil
	}
	return cart.New(entries...), nil
}

func (s *CartStore) Save(w http.ResponseWriter, r *http.Request, c *cart.Cart) error {
	sess, _ := s.store.Get(r, s.name)
	entries := []cart.Entry{}
	if c != nil && c.Entries != nil {
		entries = c.Entries
	}
	raw, err := json.Marshal(entries)
	if err != nil {
		return fmt.Errorf("session: encode cart: %w", err)
	}
	sess.Values[cartKey] = string(raw)
	if err := sess.Save(r, w); err != nil {
		return fmt.Errorf("session: save: %w", err)
	}
	return nil
}
