package loopback

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	"github.com/kbukum/socialauth/logger"
	"github.com/kbukum/socialauth/redirectpage"
)

const (
	windowCookie     = "socialauth_window"
	callbackTemplate = "callback"
)

// callbackHTML relays the full location, fragment included, to /relay and
// sends a beacon to /closed/{id} when the window goes away first.
const callbackHTML = `<!doctype html>
<html>
<head><meta charset="utf-8"><title>Signing in</title></head>
<body>
<p id="msg">Completing sign in...</p>
<script>
(function () {
  var id = {{.WindowID}};
  var done = false;
  window.addEventListener("pagehide", function () {
    if (!done && id) {
      navigator.sendBeacon("/closed/" + encodeURIComponent(id));
    }
  });
  var href = window.location.href;
  history.replaceState(null, "", window.location.pathname);
  fetch("/relay", {
    method: "POST",
    headers: {"Content-Type": "application/json"},
    body: JSON.stringify({location: href, window: id})
  }).then(function () {
    done = true;
    document.getElementById("msg").textContent = "Signed in. You can close this window.";
    window.close();
  }).catch(function () {
    document.getElementById("msg").textContent = "Sign in failed. You can close this window.";
  });
})();
</script>
</body>
</html>`

type relayRequest struct {
	Location string `json:"location" binding:"required"`
	Window   string `json:"window"`
}

func (s *Server) routes() {
	s.engine.GET("/open/:id", s.handleOpen)
	s.engine.GET(CallbackPath, s.handleCallback)
	limited := s.engine.Group("/", rateLimit(rate.NewLimiter(rate.Limit(s.config.RelayRate), s.config.RelayBurst)))
	limited.POST("/relay", s.handleRelay)
	limited.POST("/closed/:id", s.handleClosed)
	s.engine.GET("/health", s.handleHealth)
}

// handleOpen tags the browser with the window id and sends it on to the
// provider.
func (s *Server) handleOpen(c *gin.Context) {
	w := s.windows.get(c.Param("id"))
	if w == nil {
		c.String(http.StatusNotFound, "login window expired")
		return
	}
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(windowCookie, w.id, int(s.config.WindowTimeout.Seconds()), "/", "", false, true)
	c.Redirect(http.StatusFound, w.target)
}

func (s *Server) handleCallback(c *gin.Context) {
	id, _ := c.Cookie(windowCookie)
	c.Header("Cache-Control", "no-store")
	c.Header("Referrer-Policy", "no-referrer")
	c.HTML(http.StatusOK, callbackTemplate, gin.H{"WindowID": id})
}

// handleRelay receives the callback location. Responses for a live login
// window go to the waiting popup; anything else lands on the page.
func (s *Server) handleRelay(c *gin.Context) {
	if origin := c.GetHeader("Origin"); origin != "" && origin != s.BaseURL() {
		c.Status(http.StatusForbidden)
		return
	}
	var req relayRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if s.windows.get(req.Window) != nil {
		poster := redirectpage.NewOriginPoster(s.BaseURL(), s.poster)
		redirectpage.Handle(c.Request.Context(), req.Location, poster, s.BaseURL(), s.log)
	} else {
		s.page.land(req.Location)
		s.log.Debug("Redirect landed on page")
	}
	c.SetCookie(windowCookie, "", -1, "/", "", false, true)
	c.Status(http.StatusNoContent)
}

func (s *Server) handleClosed(c *gin.Context) {
	if s.windows.markClosed(c.Param("id")) {
		s.log.Debug("Login window closed", map[string]interface{}{
			"window": c.Param("id"),
		})
	}
	c.Status(http.StatusNoContent)
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		logger.FieldStatus: "healthy",
		"windows":          s.windows.len(),
	})
}
