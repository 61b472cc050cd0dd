package handler

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/redis/go-redis/v9"
	"github.com/smartmes-dev/line-planner/backend/internal/domain"
	"github.com/smartmes-dev/line-planner/backend/internal/evaluator"
	"github.com/smartmes-dev/line-planner/backend/internal/scheduler"
	"github.com/smartmes-dev/line-planner/backend/internal/utils"
)

func schedulingResultCacheKey(windowID int64) string {
	return fmt.Sprintf("scheduling_result:%d", windowID)
}

func (h *Handler) CreatePlanningWindow(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name         string    `json:"name" validate:"required"`
		Description  string    `json:"description"`
		HorizonStart time.Time `json:"horizonStart" validate:"required"`
		HorizonEnd   time.Time `json:"horizonEnd" validate:"required"`
	}

	if err := h.readJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	window := &domain.PlanningWindow{
		Name:         req.Name,
		Description:  req.Description,
		HorizonStart: req.HorizonStart,
		HorizonEnd:   req.HorizonEnd,
	}
	if err := utils.ValidatePlanningWindowTime(window); err != nil {
		h.badRequest(w, r, err)
		return
	}

	if err := h.repository.CreatePlanningWindow(window); err != nil {
		var pgErr *pgconn.PgError
		switch {
		case errors.As(err, &pgErr) && pgErr.ConstraintName == "planning_windows_name_key":
			h.badRequest(w, r, errors.New("计划时域名称已存在"))
		default:
			h.internalServerError(w, r, err)
		}
		return
	}

	h.successResponse(w, r, "创建计划时域成功", window)
}

func (h *Handler) GetAllPlanningWindows(w http.ResponseWriter, r *http.Request) {
	windows, err := h.repository.GetAllPlanningWindows()
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "获取计划时域列表成功", windows)
}

func (h *Handler) GetPlanningWindowByID(w http.ResponseWriter, r *http.Request) {
	window := r.Context().Value(PlanningWindowCtx).(*domain.PlanningWindow)
	h.successResponse(w, r, "获取计划时域成功", window)
}

func (h *Handler) UpdatePlanningWindow(w http.ResponseWriter, r *http.Request) {
	window := r.Context().Value(PlanningWindowCtx).(*domain.PlanningWindow)

	var req struct {
		Name         *string    `json:"name"`
		Description  *string    `json:"description"`
		HorizonStart *time.Time `json:"horizonStart"`
		HorizonEnd   *time.Time `json:"horizonEnd"`
	}

	if err := h.readJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	if req.Name != nil {
		window.Name = *req.Name
	}
	if req.Description != nil {
		window.Description = *req.Description
	}
	if req.HorizonStart != nil {
		window.HorizonStart = *req.HorizonStart
	}
	if req.HorizonEnd != nil {
		window.HorizonEnd = *req.HorizonEnd
	}
	if err := utils.ValidatePlanningWindowTime(window); err != nil {
		h.badRequest(w, r, err)
		return
	}

	if err := h.repository.UpdatePlanningWindow(window); err != nil {
		var pgErr *pgconn.PgError
		switch {
		case errors.Is(err, sql.ErrNoRows):
			h.errorResponse(w, r, "计划时域已被其他人修改，请刷新后重试")
		case errors.As(err, &pgErr) && pgErr.ConstraintName == "planning_windows_name_key":
			h.badRequest(w, r, errors.New("计划时域名称已存在"))
		default:
			h.internalServerError(w, r, err)
		}
		return
	}

	h.successResponse(w, r, "更新计划时域成功", window)
}

func (h *Handler) DeletePlanningWindow(w http.ResponseWriter, r *http.Request) {
	window := r.Context().Value(PlanningWindowCtx).(*domain.PlanningWindow)

	if err := h.repository.DeletePlanningWindow(window.ID); err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			h.errorResponse(w, r, "计划时域不存在")
		default:
			h.internalServerError(w, r, err)
		}
		return
	}

	// 排产结果随时域一起删除，缓存也要清掉
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(h.config.Redis.OperationExpiration)*time.Second)
	defer cancel()
	if err := h.redisClient.Del(ctx, schedulingResultCacheKey(window.ID)).Err(); err != nil {
		slog.Warn("删除排产结果缓存失败", "windowID", window.ID, "error", err)
	}

	h.successResponse(w, r, "删除计划时域成功", nil)
}

func (h *Handler) GetSchedulingResult(w http.ResponseWriter, r *http.Request) {
	window := r.Context().Value(PlanningWindowCtx).(*domain.PlanningWindow)

	// 优先读缓存
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(h.config.Redis.OperationExpiration)*time.Second)
	defer cancel()

	cached, err := h.redisClient.Get(ctx, schedulingResultCacheKey(window.ID)).Result()
	if err == nil {
		result := &domain.SchedulingResult{}
		if err := json.Unmarshal([]byte(cached), result); err == nil {
			h.successResponse(w, r, "获取排产结果成功", result)
			return
		}
		// 缓存内容损坏时回退到数据库
		slog.Warn("排产结果缓存损坏", "windowID", window.ID)
	} else if !errors.Is(err, redis.Nil) {
		slog.Warn("读取排产结果缓存失败", "windowID", window.ID, "error", err)
	}

	result, err := h.repository.GetSchedulingResultByPlanningWindowID(window.ID)
	if err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			h.errorResponse(w, r, "该计划时域还没有排产结果")
		default:
			h.internalServerError(w, r, err)
		}
		return
	}

	h.cacheSchedulingResult(result)
	h.successResponse(w, r, "获取排产结果成功", result)
}

func (h *Handler) GenerateSchedulingResult(w http.ResponseWriter, r *http.Request) {
	window := r.Context().Value(PlanningWindowCtx).(*domain.PlanningWindow)
	myInfo := r.Context().Value(MyInfoCtx).(*domain.User)

	// 所有参数均可选，缺省时使用配置中的默认值，允许请求体为空
	var req struct {
		PopulationSize *int32   `json:"populationSize"`
		MaxGenerations *int32   `json:"maxGenerations"`
		CrossoverRate  *float64 `json:"crossoverRate"`
		MutationRate   *float64 `json:"mutationRate"`
		TournamentSize *int32   `json:"tournamentSize"`
		EliteCount     *int32   `json:"eliteCount"`
		Parallel       *bool    `json:"parallel"`
		Seed           *int64   `json:"seed"`
	}

	if err := h.readJSON(r, &req); err != nil && !errors.Is(err, io.EOF) {
		h.badRequest(w, r, err)
		return
	}

	parameters := &scheduler.Parameters{
		PopulationSize: h.config.Optimizer.PopulationSize,
		MaxGenerations: h.config.Optimizer.MaxGenerations,
		CrossoverRate:  h.config.Optimizer.CrossoverRate,
		MutationRate:   h.config.Optimizer.MutationRate,
		TournamentSize: h.config.Optimizer.TournamentSize,
		EliteCount:     h.config.Optimizer.EliteCount,
		Parallel:       h.config.Optimizer.Parallel,
		Seed:           req.Seed,
	}
	if req.PopulationSize != nil {
		parameters.PopulationSize = *req.PopulationSize
	}
	if req.MaxGenerations != nil {
		parameters.MaxGenerations = *req.MaxGenerations
	}
	if req.CrossoverRate != nil {
		parameters.CrossoverRate = *req.CrossoverRate
	}
	if req.MutationRate != nil {
		parameters.MutationRate = *req.MutationRate
	}
	if req.TournamentSize != nil {
		parameters.TournamentSize = *req.TournamentSize
	}
	if req.EliteCount != nil {
		parameters.EliteCount = *req.EliteCount
	}
	if req.Parallel != nil {
		parameters.Parallel = *req.Parallel
	}

	facts, err := h.assembleProblemFacts(window)
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}
	if len(facts.Slots) == 0 {
		h.badRequest(w, r, errors.New("计划时域内没有可排产的槽位，请先创建产线"))
		return
	}

	sched, err := scheduler.New(parameters, facts, evaluator.New())
	if err != nil {
		h.badRequest(w, r, err)
		return
	}

	startedAt := time.Now()
	schedule, score, err := sched.Schedule()
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}
	slog.Info("排产完成",
		"windowID", window.ID,
		"slots", len(facts.Slots),
		"hardPenalty", score.Hard,
		"softPenalty", score.Soft,
		"elapsed", time.Since(startedAt).String(),
	)

	result := &domain.SchedulingResult{
		PlanningWindowID: window.ID,
		Plans:            schedule.Plans,
		HardPenalty:      score.Hard,
		SoftPenalty:      score.Soft,
	}
	if err := h.repository.InsertSchedulingResult(result); err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.cacheSchedulingResult(result)
	h.publishScheduleGeneratedMail(myInfo, window, result)

	h.successResponse(w, r, "排产成功", result)
}

// assembleProblemFacts 从数据库加载一次优化运行所需的全部只读事实
func (h *Handler) assembleProblemFacts(window *domain.PlanningWindow) (*domain.ProblemFacts, error) {
	items, err := h.repository.GetAllItems()
	if err != nil {
		return nil, err
	}
	lines, err := h.repository.GetAllLines()
	if err != nil {
		return nil, err
	}
	bomItems, err := h.repository.GetAllBOMItems()
	if err != nil {
		return nil, err
	}
	inventories, err := h.repository.GetAllInventories()
	if err != nil {
		return nil, err
	}
	demands, err := h.repository.GetAllDemands()
	if err != nil {
		return nil, err
	}

	return &domain.ProblemFacts{
		Items:             items,
		Lines:             lines,
		Slots:             domain.EnumerateSlots(lines, window.HorizonStart, window.HorizonEnd),
		BOMItems:          bomItems,
		Inventories:       inventories,
		Demands:           demands,
		Requirements:      domain.DeriveRequirements(bomItems, demands),
		MaxHourlyQuantity: h.config.Planning.MaxHourlyQuantity,
	}, nil
}

// cacheSchedulingResult 把排产结果写入缓存，失败只记日志不影响主流程
func (h *Handler) cacheSchedulingResult(result *domain.SchedulingResult) {
	data, err := json.Marshal(result)
	if err != nil {
		slog.Warn("序列化排产结果失败", "windowID", result.PlanningWindowID, "error", err)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(h.config.Redis.OperationExpiration)*time.Second)
	defer cancel()

	expiration := time.Duration(h.config.Redis.ResultExpiration) * time.Second
	if err := h.redisClient.Set(ctx, schedulingResultCacheKey(result.PlanningWindowID), data, expiration).Err(); err != nil {
		slog.Warn("写入排产结果缓存失败", "windowID", result.PlanningWindowID, "error", err)
	}
}

// publishScheduleGeneratedMail 通知发起人排产已完成，失败只记日志不影响主流程
func (h *Handler) publishScheduleGeneratedMail(user *domain.User, window *domain.PlanningWindow, result *domain.SchedulingResult) {
	mailMessage := domain.MailMessage{
		Type: "schedule_generated",
		To:   user.Email,
		Data: domain.ScheduleGeneratedMailData{
			FullName:    user.FullName,
			WindowName:  window.Name,
			HardPenalty: result.HardPenalty,
			SoftPenalty: result.SoftPenalty,
			FinishedAt:  time.Now().Format("2006-01-02 15:04:05"),
		},
	}

	emailData, err := json.Marshal(mailMessage)
	if err != nil {
		slog.Warn("序列化排产完成通知失败", "windowID", window.ID, "error", err)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(h.config.RabbitMQ.PublishTimeout)*time.Second)
	defer cancel()

	if err := h.notifyChannel.PublishWithContext(
		ctx,
		"",
		"notification_queue",
		true,
		false,
		amqp.Publishing{
			ContentType: "application/json",
			Body:        emailData,
		},
	); err != nil {
		slog.Warn("发送排产完成通知失败", "windowID", window.ID, "error", err)
	}
}
