package main

import (
	"net/http"
	"net/http/httputil"
	"net/url"

	"go.uber.org/zap"

	"github.com/soaringjerry/stylus/internal/config"
)

// mountFrontend serves the built wizard from StaticDir, or proxies to a dev
// server at DevFrontendURL. With neither set, / is left to the mux's 404.
func mountFrontend(mux *http.ServeMux, c config.Config, log *zap.Logger) {
	switch {
	case c.StaticDir != "":
		mux.Handle("/", http.FileServer(http.Dir(c.StaticDir)))
		log.Info("serving static frontend", zap.String("dir", c.StaticDir))
	case c.DevFrontendURL != "":
		u, err := url.Parse(c.DevFrontendURL)
		if err != nil || u.Scheme == "" || u.Host == "" {
			log.Warn("ignoring invalid STYLUS_DEV_FRONTEND_URL", zap.String("url", c.DevFrontendURL), zap.Error(err))
			return
		}
		rp := httputil.NewSingleHostReverseProxy(u)
		rp.ModifyResponse = func(res *http.Response) error {
			res.Header.Set("Cache-Control", "no-store, no-cache, must-revalidate, max-age=0")
			res.Header.Set("Pragma", "no-cache")
			res.Header.Set("Expires", "0")
			return nil
		}
		mux.Handle("/", rp)
		log.Info("proxying frontend to dev server", zap.String("url", u.String()))
	}
}
