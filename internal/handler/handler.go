package handler

import (
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/locales/zh"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	zh_translations "github.com/go-playground/validator/v10/translations/zh"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/sysu-ecnc-dev/shift-coverage/backend/internal/checkrun"
	"github.com/sysu-ecnc-dev/shift-coverage/backend/internal/config"
	"github.com/sysu-ecnc-dev/shift-coverage/backend/internal/domain"
	"github.com/sysu-ecnc-dev/shift-coverage/backend/internal/metrics"
	"github.com/sysu-ecnc-dev/shift-coverage/backend/internal/repository"
)

type Handler struct {
	validate   *validator.Validate
	config     *config.Config
	profile    *config.AgencyProfile
	repository *repository.Repository
	translator ut.Translator
	runner     *checkrun.Runner
	location   *time.Location

	Mux *chi.Mux
}

func NewHandler(cfg *config.Config, profile *config.AgencyProfile, repo *repository.Repository, runner *checkrun.Runner, loc *time.Location) (*Handler, error) {
	validate := validator.New(validator.WithRequiredStructEnabled())
	zh := zh.New()
	uni := ut.New(zh, zh)
	trans, _ := uni.GetTranslator("zh")
	if err := zh_translations.RegisterDefaultTranslations(validate, trans); err != nil {
		return nil, err
	}

	return &Handler{
		validate:   validate,
		config:     cfg,
		profile:    profile,
		repository: repo,
		translator: trans,
		runner:     runner,
		location:   loc,

		Mux: chi.NewRouter(),
	}, nil
}

func (h *Handler) RegisterRoutes() {
	h.Mux.Use(h.logger)
	h.Mux.Use(h.recoverer)

	h.Mux.Handle("/metrics", promhttp.HandlerFor(metrics.Registry, promhttp.HandlerOpts{}))

	// 认证相关
	h.Mux.Route("/auth", func(r chi.Router) {
		r.Post("/login", h.Login)
		r.Post("/logout", h.Logout)
	})

	// 以下 API 必须要在登录后才允许调用
	h.Mux.Group(func(r chi.Router) {
		r.Use(h.auth)
		r.With(h.myInfo).Get("/my-info", h.GetMyInfo)

		r.Route("/coverage", func(r chi.Router) {
			r.Post("/check", h.CheckCoverage)
			r.Get("/report", h.GetCoverageReport)
		})

		r.Route("/notifications", func(r chi.Router) {
			r.Use(h.RequiredRole([]domain.OperatorRole{domain.OperatorRoleAdmin}))
			r.Get("/records", h.GetNotificationRecords)
		})
	})
}
