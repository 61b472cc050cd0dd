package handler

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-playground/locales/zh"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	zh_translations "github.com/go-playground/validator/v10/translations/zh"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/redis/go-redis/v9"
	"github.com/smartmes-dev/line-planner/backend/internal/config"
	"github.com/smartmes-dev/line-planner/backend/internal/domain"
	"github.com/smartmes-dev/line-planner/backend/internal/repository"
)

type Handler struct {
	validate      *validator.Validate
	config        *config.Config
	repository    *repository.Repository
	translator    ut.Translator
	notifyChannel *amqp.Channel
	redisClient   *redis.Client

	Mux *chi.Mux
}

func NewHandler(cfg *config.Config, repo *repository.Repository, notifyCh *amqp.Channel, rdb *redis.Client) (*Handler, error) {
	validate := validator.New(validator.WithRequiredStructEnabled())
	zh := zh.New()
	uni := ut.New(zh, zh)
	trans, _ := uni.GetTranslator("zh")
	if err := zh_translations.RegisterDefaultTranslations(validate, trans); err != nil {
		return nil, err
	}

	return &Handler{
		validate:      validate,
		config:        cfg,
		repository:    repo,
		translator:    trans,
		notifyChannel: notifyCh,
		redisClient:   rdb,

		Mux: chi.NewRouter(),
	}, nil
}

func (h *Handler) RegisterRoutes() {
	h.Mux.Use(h.logger)
	h.Mux.Use(h.recoverer)

	// 认证相关
	h.Mux.Route("/auth", func(r chi.Router) {
		r.Post("/login", h.Login)
		r.Post("/logout", h.Logout)
	})

	// 以下 API 必须要在登录后才允许调用
	h.Mux.Group(func(r chi.Router) {
		r.Use(h.auth)
		r.Route("/my-info", func(r chi.Router) {
			r.Use(h.myInfo)
			r.Get("/", h.GetMyInfo)
			r.Patch("/password", h.UpdateMyPassword)
		})

		r.Route("/users", func(r chi.Router) {
			r.With(h.RequiredRole([]domain.Role{domain.RoleAdmin})).Post("/", h.CreateUser)
			r.Get("/", h.GetAllUserInfo)
			r.Route("/{id}", func(r chi.Router) {
				r.Use(h.userInfo)
				r.Get("/", h.GetUserInfo)
				r.With(h.preventOperateInitialAdmin).With(h.RequiredRole([]domain.Role{domain.RoleAdmin})).Patch("/", h.UpdateUser)
				r.With(h.preventOperateInitialAdmin).With(h.RequiredRole([]domain.Role{domain.RoleAdmin})).Delete("/", h.DeleteUser)
			})
		})

		// 排产所需的事实数据：物料、BOM、产线、需求、库存
		r.Route("/items", func(r chi.Router) {
			r.With(h.RequiredRole([]domain.Role{domain.RoleAdmin, domain.RolePlanner})).Post("/", h.CreateItem)
			r.Get("/", h.GetAllItems)
			r.With(h.RequiredRole([]domain.Role{domain.RoleAdmin, domain.RolePlanner})).Post("/bom", h.CreateBOMItem)
			r.Get("/bom", h.GetAllBOMItems)
		})

		r.Route("/lines", func(r chi.Router) {
			r.With(h.RequiredRole([]domain.Role{domain.RoleAdmin, domain.RolePlanner})).Post("/", h.CreateLine)
			r.Get("/", h.GetAllLines)
		})

		r.Route("/demands", func(r chi.Router) {
			r.With(h.RequiredRole([]domain.Role{domain.RoleAdmin, domain.RolePlanner})).Post("/", h.CreateDemand)
			r.Get("/", h.GetAllDemands)
			r.With(h.RequiredRole([]domain.Role{domain.RoleAdmin, domain.RolePlanner})).Delete("/{id}", h.DeleteDemand)
		})

		r.Route("/inventories", func(r chi.Router) {
			r.With(h.RequiredRole([]domain.Role{domain.RoleAdmin, domain.RolePlanner})).Post("/", h.CreateInventory)
			r.Get("/", h.GetAllInventories)
		})

		r.Route("/planning-windows", func(r chi.Router) {
			r.With(h.RequiredRole([]domain.Role{domain.RoleAdmin, domain.RolePlanner})).Post("/", h.CreatePlanningWindow)
			r.Get("/", h.GetAllPlanningWindows)
			r.Route("/{option}", func(r chi.Router) {
				r.Use(h.planningWindow)
				r.Get("/", h.GetPlanningWindowByID)
				r.With(h.RequiredRole([]domain.Role{domain.RoleAdmin, domain.RolePlanner})).Patch("/", h.UpdatePlanningWindow)
				r.With(h.RequiredRole([]domain.Role{domain.RoleAdmin})).Delete("/", h.DeletePlanningWindow)
				r.Route("/scheduling-result", func(r chi.Router) {
					r.Get("/", h.GetSchedulingResult)
					r.With(h.myInfo).With(h.RequiredRole([]domain.Role{domain.RoleAdmin, domain.RolePlanner})).Post("/generate", h.GenerateSchedulingResult)
				})
			})
		})
	})
}
