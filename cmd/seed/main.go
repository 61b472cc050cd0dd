package main

import (
	"context"
	"database/sql"
	"flag"
	"log/slog"
	"os"
	"time"

	"github.com/smartmes-dev/line-planner/backend/internal/config"
	"github.com/smartmes-dev/line-planner/backend/internal/repository"
	"github.com/smartmes-dev/line-planner/backend/internal/seed"
	"github.com/smartmes-dev/line-planner/backend/internal/utils"

	_ "github.com/jackc/pgx/v5/stdlib"
)

func main() {
	var op int
	var n int

	flag.IntVar(&op, "op", 0, "要执行的操作 (1: 插入随机用户, 2: 插入随机物料, 3: 插入随机产线, 4: 插入随机 BOM, 5: 插入随机需求, 6: 插入随机库存快照, 7: 插入演示数据)")
	flag.IntVar(&n, "n", 5, "要插入的记录数量")
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))

	// 读取配置文件
	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Error("无法读取配置文件", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// 创建数据库连接池
	dbpool, err := sql.Open("pgx", cfg.Database.DSN)
	if err != nil {
		logger.Error("无法创建数据库连接池", "error", err)
		return
	}
	defer dbpool.Close()

	dbpool.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	dbpool.SetMaxIdleConns(cfg.Database.MaxIdleConns)
	dbpool.SetConnMaxIdleTime(time.Duration(cfg.Database.MaxIdleTime) * time.Second)

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.Database.ConnectTimeout)*time.Second)
	defer cancel()

	// sql.Open 只是创建数据库连接池对象，并不会立即连接到数据库，因此需要显式地 ping 一下
	if err := dbpool.PingContext(ctx); err != nil {
		logger.Error("无法连接到数据库", "error", err)
		return
	}

	// 创建 repository
	repo := repository.NewRepository(cfg, dbpool)

	// 执行操作
	switch op {
	case 0:
		slog.Error("未指定操作")
	case 1:
		if n <= 0 {
			slog.Error("请输入合法的用户数量")
			return
		}
		cnt := n
		for i := 0; i < n; i++ {
			user, err := utils.GenerateRandomUser(cfg.Seed.User.Password, cfg.Email.UserDomain)
			if err != nil {
				slog.Error("无法生成随机用户", slog.String("error", err.Error()))
				continue
			}

			if err := repo.CreateUser(user); err != nil {
				slog.Error("无法插入用户", slog.String("error", err.Error()))
				continue
			}

			cnt--
		}

		slog.Info("插入用户成功", slog.Int("count", n-cnt))
	case 2:
		if n <= 0 {
			slog.Error("请输入合法的物料数量")
			return
		}
		cnt := n
		for i := 0; i < n; i++ {
			if err := repo.CreateItem(utils.GenerateRandomItem()); err != nil {
				slog.Error("无法插入物料", slog.String("error", err.Error()))
				continue
			}

			cnt--
		}

		slog.Info("插入物料成功", slog.Int("count", n-cnt))
	case 3:
		if n <= 0 {
			slog.Error("请输入合法的产线数量")
			return
		}
		// 产线的生产能力引用物料，所以要先获取所有物料
		items, err := repo.GetAllItems()
		if err != nil {
			slog.Error("无法获取所有物料", slog.String("error", err.Error()))
			return
		}
		if len(items) == 0 {
			slog.Error("数据库中没有物料，请先插入物料")
			return
		}

		cnt := n
		for i := 0; i < n; i++ {
			if err := repo.CreateLine(utils.GenerateRandomLine(i+1, items)); err != nil {
				slog.Error("无法插入产线", slog.String("error", err.Error()))
				continue
			}

			cnt--
		}

		slog.Info("插入产线成功", slog.Int("count", n-cnt))
	case 4:
		items, err := repo.GetAllItems()
		if err != nil {
			slog.Error("无法获取所有物料", slog.String("error", err.Error()))
			return
		}
		if len(items) < 2 {
			slog.Error("物料数量不足，无法生成 BOM")
			return
		}

		// 为每种还没有 BOM 的物料生成一个随机 BOM
		boms, err := repo.GetAllBOMItems()
		if err != nil {
			slog.Error("无法获取所有 BOM", slog.String("error", err.Error()))
			return
		}
		hasBOM := make(map[int64]bool)
		for _, bom := range boms {
			hasBOM[bom.ItemID] = true
		}

		cnt := 0
		for _, item := range items {
			if hasBOM[item.ID] {
				continue
			}
			bom := utils.GenerateRandomBOMItem(item, items)
			if len(bom.Components) == 0 {
				continue
			}
			if err := repo.CreateBOMItem(bom); err != nil {
				slog.Error("无法插入 BOM", slog.String("error", err.Error()))
				continue
			}

			cnt++
		}

		slog.Info("插入 BOM 成功", slog.Int("count", cnt))
	case 5:
		if n <= 0 {
			slog.Error("请输入合法的需求数量")
			return
		}
		items, err := repo.GetAllItems()
		if err != nil {
			slog.Error("无法获取所有物料", slog.String("error", err.Error()))
			return
		}
		if len(items) == 0 {
			slog.Error("数据库中没有物料，请先插入物料")
			return
		}

		cnt := n
		for i := 0; i < n; i++ {
			if err := repo.CreateDemand(utils.GenerateRandomDemand(items)); err != nil {
				slog.Error("无法插入需求", slog.String("error", err.Error()))
				continue
			}

			cnt--
		}

		slog.Info("插入需求成功", slog.Int("count", n-cnt))
	case 6:
		if n <= 0 {
			slog.Error("请输入合法的库存快照数量")
			return
		}
		items, err := repo.GetAllItems()
		if err != nil {
			slog.Error("无法获取所有物料", slog.String("error", err.Error()))
			return
		}
		if len(items) == 0 {
			slog.Error("数据库中没有物料，请先插入物料")
			return
		}

		cnt := n
		for i := 0; i < n; i++ {
			if err := repo.CreateInventory(utils.GenerateRandomInventory(items)); err != nil {
				slog.Error("无法插入库存快照", slog.String("error", err.Error()))
				continue
			}

			cnt--
		}

		slog.Info("插入库存快照成功", slog.Int("count", n-cnt))
	case 7:
		seed.SeedDemoData(repo)
	default:
		slog.Error("指定的操作非法")
	}
}
