package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"IdeaToVideo-server/config"

	"github.com/hibiken/asynq"
)

const (
	TypeResaveProject = "project:resave"
)

type ResavePayload struct {
	RunID string `json:"run_id"`
}

var QueueClient *asynq.Client

// InitQueue 初始化
func InitQueue() {
	QueueClient = asynq.NewClient(asynq.RedisClientOpt{
		Addr:     config.AppConfig.Redis.Addr,
		Password: config.AppConfig.Redis.Password,
	})
}

// QueueResaver 通过 asynq 发起场景补写的 Resaver 实现
type QueueResaver struct{}

// EnqueueResave 场景图重生成功后的后台补写入队
func (QueueResaver) EnqueueResave(runID string) error {
	payload, err := json.Marshal(ResavePayload{RunID: runID})
	if err != nil {
		return fmt.Errorf("marshal payload failed: %w", err)
	}

	task := asynq.NewTask(TypeResaveProject, payload,
		asynq.MaxRetry(3),             // 失败重试 3 次
		asynq.Timeout(1*time.Minute),  // 纯数据库写，超时从紧
		asynq.Retention(24*time.Hour), // 任务结果在 Redis 保留时间
	)

	info, err := QueueClient.Enqueue(task)
	if err != nil {
		return fmt.Errorf("enqueue failed: %w", err)
	}

	log.Printf("[Queue] Resave Enqueued: RunID=%s, ID=%s", runID, info.ID)
	return nil
}

// HandleResaveTask 重读运行的当前场景并整体重写项目场景行。
// 补写失败只会被 asynq 重试并记日志，永远不回传给重生成的调用方。
func HandleResaveTask(ctx context.Context, t *asynq.Task) error {
	var payload ResavePayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return fmt.Errorf("unmarshal payload failed: %w", err)
	}

	run, ok := GetRun(payload.RunID)
	if !ok {
		log.Printf("[Queue] 补写跳过: 运行 %s 已不存在", payload.RunID)
		return nil
	}
	projectID := run.Snapshot().ProjectID
	if projectID == "" {
		log.Printf("[Queue] 补写跳过: 运行 %s 尚未持久化", payload.RunID)
		return nil
	}

	store := DBStore{}
	if err := store.ReplaceProjectScenes(projectID, run.SceneRecords()); err != nil {
		log.Printf("[Queue] 项目 %s 场景补写失败: %v", projectID, err)
		return err
	}
	log.Printf("[Queue] 项目 %s 场景补写完成", projectID)
	return nil
}

// StartQueueServer 启动补写消费者，在 main.go 中调用
func StartQueueServer() {
	srv := asynq.NewServer(
		asynq.RedisClientOpt{
			Addr:     config.AppConfig.Redis.Addr,
			Password: config.AppConfig.Redis.Password,
		},
		asynq.Config{Concurrency: 1},
	)

	mux := asynq.NewServeMux()
	mux.HandleFunc(TypeResaveProject, HandleResaveTask)

	go func() {
		if err := srv.Run(mux); err != nil {
			log.Fatalf("[Queue] 消费者启动失败: %v", err)
		}
	}()
	log.Println("[Queue] 补写消费者已启动")
}
