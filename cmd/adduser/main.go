// adduser 创建门岗人员账号
//
//	go run ./cmd/adduser -username guard1 -password secret123 -role guard
//	go run ./cmd/adduser -username clerk -password secret123 -role staff -grant view_student,view_movementlog
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/maximanoob01/hostel-gate-checkk/config"
	"github.com/maximanoob01/hostel-gate-checkk/internal/dto"
	"github.com/maximanoob01/hostel-gate-checkk/internal/repository"
	"github.com/maximanoob01/hostel-gate-checkk/internal/service"
	"github.com/maximanoob01/hostel-gate-checkk/pkg/database"
	"github.com/maximanoob01/hostel-gate-checkk/pkg/jwt"
	applogger "github.com/maximanoob01/hostel-gate-checkk/pkg/logger"
)

func main() {
	var (
		configPath = flag.String("config", "", "配置文件路径")
		username   = flag.String("username", "", "登录名")
		password   = flag.String("password", "", "密码（至少 8 位）")
		fullName   = flag.String("name", "", "姓名")
		role       = flag.String("role", "guard", "角色: staff | guard | warden | admin")
		grants     = flag.String("grant", "", "额外权限，逗号分隔")
	)
	flag.Parse()

	if err := run(*configPath, &dto.CreateUserRequest{
		Username:    *username,
		FullName:    *fullName,
		Password:    *password,
		Role:        *role,
		Permissions: splitGrants(*grants),
	}); err != nil {
		fmt.Fprintf(os.Stderr, "创建用户失败: %v\n", err)
		os.Exit(1)
	}
}

func run(configPath string, req *dto.CreateUserRequest) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	logger, err := applogger.NewLogger(&cfg.Log)
	if err != nil {
		return err
	}
	defer logger.Sync()

	db, err := database.NewDB(&cfg.Database, cfg.Log.Level, logger)
	if err != nil {
		return err
	}
	defer func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	}()
	if err := database.Migrate(db, cfg.Database.Driver, logger); err != nil {
		return err
	}

	authSvc := service.NewAuthService(cfg, repository.NewRepository(db), jwt.NewManager(&cfg.Auth), nil, logger)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	user, err := authSvc.CreateUser(ctx, req)
	if err != nil {
		if errors.Is(err, service.ErrUsernameExists) {
			return fmt.Errorf("用户名 %q 已存在", req.Username)
		}
		return err
	}

	fmt.Printf("用户已创建: %s (id=%d, role=%s)\n", user.Username, user.ID, user.Role)
	return nil
}

func splitGrants(s string) []string {
	var out []string
	for _, g := range strings.Split(s, ",") {
		if g = strings.TrimSpace(g); g != "" {
			out = append(out, g)
		}
	}
	return out
}
