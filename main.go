package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"storybook/internal/config"
	"storybook/internal/pipeline"
	"storybook/internal/tools"
)

func main() {
	// 初始化日志
	logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	logrus.SetLevel(logrus.InfoLevel)
	log := logrus.WithField("component", "server")

	// 加载配置
	cfg, err := config.Load()
	if err != nil {
		logrus.Fatalf("加载配置失败: %v", err)
	}

	// 初始化流水线
	pipe, err := pipeline.New(context.Background(), log, cfg)
	if err != nil {
		logrus.Fatalf("初始化流水线失败: %v", err)
	}

	// 初始化工具
	storybookTool := tools.NewStorybookTool(pipe)

	// 初始化Gin路由
	router := gin.Default()

	// 添加路由
	router.POST("/story/generate", handleGenerate(pipe))
	router.GET("/story/providers", handleProviders(pipe))
	router.POST("/tools/story-generate", handleToolGenerate(storybookTool))
	router.Static("/generated", cfg.OutputDir)

	// 启动服务器
	srv := &http.Server{
		Addr:    cfg.ListenAddr,
		Handler: router,
	}

	// 在goroutine中启动服务器
	go func() {
		log.Infof("服务器启动在 %s", cfg.ListenAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logrus.Fatalf("启动服务器失败: %v", err)
		}
	}()

	// 等待中断信号
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("关闭服务器...")

	// 优雅关闭服务器
	if err := srv.Close(); err != nil {
		logrus.Fatalf("服务器关闭失败: %v", err)
	}

	log.Info("服务器已关闭")
}

// handleGenerate 处理完整绘本生成请求
func handleGenerate(pipe *pipeline.Pipeline) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req pipeline.Request
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "无效的请求格式"})
			return
		}

		result, err := pipe.Run(c.Request.Context(), req)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": fmt.Sprintf("生成绘本失败: %v", err)})
			return
		}

		c.JSON(http.StatusOK, result)
	}
}

// handleProviders 查询各能力链的provider可用性
func handleProviders(pipe *pipeline.Pipeline) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, pipe.ProviderAvailability())
	}
}

// handleToolGenerate 以eino工具协议处理生成请求
func handleToolGenerate(storybookTool *tools.StorybookTool) gin.HandlerFunc {
	return func(c *gin.Context) {
		// 直接读取请求体作为JSON参数
		body, err := io.ReadAll(c.Request.Body)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "无效的请求格式"})
			return
		}

		result, err := storybookTool.InvokableRun(c.Request.Context(), string(body))
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": fmt.Sprintf("生成绘本失败: %v", err)})
			return
		}

		c.Data(http.StatusOK, "application/json", []byte(result))
	}
}
