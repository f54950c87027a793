package server

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/matzehuels/reflections/pkg/cache"
	"github.com/matzehuels/reflections/pkg/errors"
	"github.com/matzehuels/reflections/pkg/mosaic"
	"github.com/matzehuels/reflections/pkg/mosaic/sink"
	"github.com/matzehuels/reflections/pkg/observability"
	"github.com/matzehuels/reflections/pkg/session"
	"github.com/matzehuels/reflections/pkg/shard"
	"github.com/matzehuels/reflections/pkg/store"
	"github.com/matzehuels/reflections/pkg/viewport"
)

type loginRequest struct {
	Username string `json:"username" validate:"required,max=64"`
}

type loginResponse struct {
	Username  string    `json:"username"`
	UserID    string    `json:"user_id"`
	SessionID string    `json:"session_id"`
	ExpiresAt time.Time `json:"expires_at"`
}

type shardRequest struct {
	Spark string `json:"spark" validate:"required"`
	Text  string `json:"text" validate:"required"`
	Tint  int    `json:"tint" validate:"gte=0"`
	Glow  int    `json:"glow" validate:"gte=0"`
	Point int    `json:"point" validate:"gte=0"`
}

func (req shardRequest) draft() shard.Draft {
	return shard.Draft{Spark: req.Spark, Text: req.Text, Tint: req.Tint, Glow: req.Glow, Point: req.Point}
}

// local binds the store to the requesting user.
func (s *Server) local(r *http.Request) *store.Local {
	return store.NewLocal(s.store, SessionFrom(r.Context()).UserID, s.limits)
}

func (s *Server) healthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decode(r, &req); err != nil {
		s.fail(w, r, err)
		return
	}
	sess, err := session.New(req.Username, s.opts.SessionTTL)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	if err := s.sessions.Set(r.Context(), sess); err != nil {
		s.fail(w, r, err)
		return
	}
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    sess.ID,
		Path:     "/",
		Expires:  sess.ExpiresAt,
		HttpOnly: true,
		Secure:   s.opts.CookieSecure,
		SameSite: http.SameSiteLaxMode,
	})
	s.logger.Info("login", "user", sess.Username)
	writeJSON(w, http.StatusOK, loginResponse{
		Username:  sess.Username,
		UserID:    sess.UserID,
		SessionID: sess.ID,
		ExpiresAt: sess.ExpiresAt,
	})
}

func (s *Server) logout(w http.ResponseWriter, r *http.Request) {
	if sess := SessionFrom(r.Context()); sess != nil {
		if err := s.sessions.Delete(r.Context(), sess.ID); err != nil {
			s.fail(w, r, err)
			return
		}
	}
	http.SetCookie(w, &http.Cookie{Name: CookieName, Value: "", Path: "/", MaxAge: -1})
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) getPoints(w http.ResponseWriter, r *http.Request) {
	ws, err := s.local(r).GetPoints(r.Context())
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, ws)
}

func (s *Server) createPoints(w http.ResponseWriter, r *http.Request) {
	s.putPoints(w, r, http.StatusCreated, (*store.Local).CreatePoints)
}

func (s *Server) updatePoints(w http.ResponseWriter, r *http.Request) {
	s.putPoints(w, r, http.StatusOK, (*store.Local).UpdatePoints)
}

func (s *Server) putPoints(w http.ResponseWriter, r *http.Request, status int,
	save func(*store.Local, context.Context, mosaic.WorkingSet) error) {
	var ws mosaic.WorkingSet
	if err := decode(r, &ws); err != nil {
		s.fail(w, r, err)
		return
	}
	local := s.local(r)
	if err := save(local, r.Context(), ws); err != nil {
		s.fail(w, r, err)
		return
	}
	stored, err := local.GetPoints(r.Context())
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, status, stored)
}

func (s *Server) deletePoints(w http.ResponseWriter, r *http.Request) {
	if err := s.store.DeletePattern(r.Context(), SessionFrom(r.Context()).UserID); err != nil {
		s.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) listShards(w http.ResponseWriter, r *http.Request) {
	list, err := s.local(r).ListShards(r.Context())
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeShards(w, http.StatusOK, list)
}

func (s *Server) getShard(w http.ResponseWriter, r *http.Request) {
	sh, err := s.store.GetShard(r.Context(), SessionFrom(r.Context()).UserID, chi.URLParam(r, "id"))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, sh)
}

func (s *Server) createShard(w http.ResponseWriter, r *http.Request) {
	var req shardRequest
	if err := decode(r, &req); err != nil {
		s.fail(w, r, err)
		return
	}
	list, err := s.local(r).CreateShard(r.Context(), req.draft())
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeShards(w, http.StatusCreated, list)
}

func (s *Server) updateShard(w http.ResponseWriter, r *http.Request) {
	var req shardRequest
	if err := decode(r, &req); err != nil {
		s.fail(w, r, err)
		return
	}
	list, err := s.local(r).UpdateShard(r.Context(), chi.URLParam(r, "id"), req.draft())
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeShards(w, http.StatusOK, list)
}

func (s *Server) deleteShard(w http.ResponseWriter, r *http.Request) {
	list, err := s.local(r).DeleteShard(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeShards(w, http.StatusOK, list)
}

func (s *Server) tarnishShard(w http.ResponseWriter, r *http.Request) {
	sh, err := s.store.TarnishShard(r.Context(), SessionFrom(r.Context()).UserID, chi.URLParam(r, "id"))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, sh)
}

// mosaicSVG renders the user's mosaic. Output is cached under a hash of the
// working set, the shards and the requested size.
func (s *Server) mosaicSVG(w http.ResponseWriter, r *http.Request) {
	size, err := parseSize(r)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	ctx := r.Context()
	local := s.local(r)

	ws, err := local.GetPoints(ctx)
	if errors.IsNotFound(err) {
		ws, err = mosaic.DefaultWorkingSet(), nil
	}
	if err != nil {
		s.fail(w, r, err)
		return
	}
	shards, err := local.ListShards(ctx)
	if err != nil {
		s.fail(w, r, err)
		return
	}

	content, err := mosaicContent(ws, shards)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	keyer := cache.NewScopedKeyer(s.keyer, "user:"+local.UserID()+":")
	key := keyer.MosaicKey(cache.Hash(content), cache.MosaicKeyOpts{
		Format:      "svg",
		Width:       int(size.Width),
		Height:      int(size.Height),
		Interactive: true,
	})

	data, hit, err := cache.GetOrCompute(ctx, s.cache, key, s.opts.CacheTTL, func() ([]byte, error) {
		start := time.Now()
		d, err := s.renderer.Render(ws, size)
		cells := 0
		if d != nil {
			cells = len(d.Cells)
		}
		observability.Mosaic().OnRender(ctx, len(ws.Points), cells, time.Since(start), err)
		if err != nil {
			return nil, err
		}
		mosaic.Bind(d, shards)

		start = time.Now()
		out := sink.RenderSVG(d)
		observability.Mosaic().OnEncode(ctx, "svg", len(out), time.Since(start), nil)
		observability.Cache().OnCacheSet(ctx, "mosaic", len(out))
		return out, nil
	})
	if err != nil {
		s.fail(w, r, err)
		return
	}
	if hit {
		observability.Cache().OnCacheHit(ctx, "mosaic")
	} else {
		observability.Cache().OnCacheMiss(ctx, "mosaic")
	}

	w.Header().Set("Content-Type", "image/svg+xml")
	w.Header().Set("Cache-Control", "private, no-cache")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

func parseSize(r *http.Request) (viewport.Size, error) {
	size := viewport.Size{Width: 800, Height: 800}
	for name, dst := range map[string]*float64{"width": &size.Width, "height": &size.Height} {
		raw := r.URL.Query().Get(name)
		if raw == "" {
			continue
		}
		v, err := strconv.Atoi(raw)
		if err != nil || v <= 0 || v > 8192 {
			return viewport.Size{}, errors.New(errors.ErrCodeInvalidInput, "%s must be an integer in 1..8192", name)
		}
		*dst = float64(v)
	}
	return size, nil
}

func writeShards(w http.ResponseWriter, status int, list []shard.Shard) {
	if list == nil {
		list = []shard.Shard{}
	}
	writeJSON(w, status, list)
}

// mosaicContent is the cache key input for a rendered mosaic.
func mosaicContent(ws mosaic.WorkingSet, shards []shard.Shard) ([]byte, error) {
	content, err := json.Marshal(struct {
		Points mosaic.WorkingSet `json:"points"`
		Shards []shard.Shard     `json:"shards"`
	}{ws, shards})
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "encode mosaic cache key")
	}
	return content, nil
}
