// Package server exposes the intake form and the admin view over HTTP.
package server

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"strings"

	"github.com/IliaW/lead-hunter/internal/intake"
	"github.com/IliaW/lead-hunter/internal/model"
	"github.com/gin-gonic/gin"
)

type Submitter interface {
	Submit(ctx context.Context, profile model.ApplicantProfile) (*intake.Result, error)
}

// ApplicationStore is the local store behind the admin view.
type ApplicationStore interface {
	ReadAll() ([]map[string]string, error)
	Path() string
}

type Handler struct {
	submitter    Submitter
	store        ApplicationStore
	budgetLabels []string
	downloadName string
}

func NewHandler(submitter Submitter, store ApplicationStore, budgetLabels []string,
	downloadName string) *Handler {
	return &Handler{
		submitter:    submitter,
		store:        store,
		budgetLabels: budgetLabels,
		downloadName: downloadName,
	}
}

// applicationForm accepts both urlencoded form posts and JSON bodies.
type applicationForm struct {
	Name        string `form:"name" json:"name"`
	Email       string `form:"email" json:"email"`
	Phone       string `form:"phone" json:"phone"`
	Age         int    `form:"age" json:"age"`
	Nationality string `form:"nationality" json:"nationality"`
	City        string `form:"city" json:"city"`
	Position    string `form:"position" json:"position"`
	Level       string `form:"level" json:"level"`
	Foot        string `form:"foot" json:"foot"`
	Budget      string `form:"budget" json:"budget"`
	Passport    string `form:"passport" json:"passport"`
	Video       string `form:"video" json:"video"`
}

func (f *applicationForm) profile(budgetLabels []string) (model.ApplicantProfile, map[string]string) {
	p := model.ApplicantProfile{
		Name:        f.Name,
		Email:       f.Email,
		Phone:       f.Phone,
		Age:         f.Age,
		Nationality: f.Nationality,
		City:        f.City,
		Video:       f.Video,
	}
	fields := make(map[string]string)
	var err error
	if p.Position, err = model.ParsePosition(f.Position); err != nil {
		fields["position"] = err.Error()
	}
	if p.Level, err = model.ParseLevel(f.Level); err != nil {
		fields["level"] = err.Error()
	}
	if p.Foot, err = model.ParseFoot(f.Foot); err != nil {
		fields["foot"] = err.Error()
	}
	if p.Budget, err = model.ParseBudget(f.Budget, budgetLabels...); err != nil {
		fields["budget"] = err.Error()
	}
	if f.Passport != "" {
		if p.Passport, err = model.ParsePassport(f.Passport); err != nil {
			fields["passport"] = err.Error()
		}
	}

	return p, fields
}

func (h *Handler) Apply(c *gin.Context) {
	var form applicationForm
	if err := c.ShouldBind(&form); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	profile, fields := form.profile(h.budgetLabels)
	if len(fields) > 0 {
		c.JSON(http.StatusUnprocessableEntity, gin.H{
			"error":  "Merci de vérifier les champs du formulaire.",
			"fields": fields,
		})
		return
	}

	res, err := h.submitter.Submit(c.Request.Context(), profile)
	if err != nil {
		var verr *intake.ValidationError
		if errors.As(err, &verr) {
			c.JSON(http.StatusUnprocessableEntity, gin.H{
				"error":  validationMessage(verr.Fields),
				"fields": verr.Fields,
			})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur technique lors de la sauvegarde."})
		return
	}

	c.JSON(http.StatusCreated, res)
}

var fieldLabels = []struct{ field, label string }{
	{"name", "Nom"},
	{"email", "Email"},
	{"phone", "Téléphone"},
	{"age", "Âge"},
}

// validationMessage names the rejected fields in form order.
func validationMessage(fields map[string]string) string {
	var labels []string
	for _, fl := range fieldLabels {
		if _, ok := fields[fl.field]; ok {
			labels = append(labels, fl.label)
		}
	}
	if len(labels) == 0 {
		return "Merci de vérifier les champs du formulaire."
	}
	return "Merci de vérifier : " + strings.Join(labels, ", ") + "."
}

func (h *Handler) ListApplications(c *gin.Context) {
	rows, err := h.store.ReadAll()
	if err != nil {
		slog.Error("failed to read applications.", slog.String("err", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to read applications"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"count": len(rows), "applications": rows})
}

func (h *Handler) DownloadApplications(c *gin.Context) {
	if _, err := os.Stat(h.store.Path()); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "no applications yet"})
		return
	}
	c.FileAttachment(h.store.Path(), h.downloadName)
}

func Ping(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
