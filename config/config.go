package config

import (
    "log"
    "os"

    "gopkg.in/yaml.v2"
)

type BackendServer struct {
    ID   int    `yaml:"id"`
    Name string `yaml:"name"`
    Key  string `yaml:"key"`
}

type Config struct {
    Server struct {
        Port string `yaml:"port"`
    } `yaml:"server"`
    MySQL struct {
        DSN string `yaml:"dsn"`
    } `yaml:"mysql"`
    Redis struct {
        Addr     string `yaml:"addr"`
        Password string `yaml:"password"`
    } `yaml:"redis"`
    // 各生成后端（worker）的地址，均为 HTTP 服务
    Backends struct {
        TextAPI  string `yaml:"text_api"`  // 剧本/提示词/SEO 生成
        ImageAPI string `yaml:"image_api"` // 角色图/场景图生成
        VideoAPI string `yaml:"video_api"` // 图生视频
        TTSAPI   string `yaml:"tts_api"`   // 语音合成

        // 可切换的后端 key 池，active 记录在 setting 表，运行中可改
        Servers       []BackendServer `yaml:"servers"`
        DefaultServer int             `yaml:"default_server"`
    } `yaml:"backends"`
    Retry struct {
        MaxAttempts int `yaml:"max_attempts"`
        BaseDelayMs int `yaml:"base_delay_ms"`
    } `yaml:"retry"`
    MinIO struct {
        Endpoint  string `yaml:"endpoint"`
        AccessKey string `yaml:"access_key"`
        SecretKey string `yaml:"secret_key"`
        Bucket    string `yaml:"bucket"`
        UseSSL    bool   `yaml:"use_ssl"`
        Domain    string `yaml:"domain"`
    } `yaml:"minio"`
}

var AppConfig *Config

func InitConfig() {
    f, err := os.Open("config/config.yaml")
    if err != nil {
        log.Fatalf("配置文件读取失败: %v", err)
    }
    defer f.Close()
    decoder := yaml.NewDecoder(f)
    AppConfig = &Config{}
    if err := decoder.Decode(AppConfig); err != nil {
        log.Fatalf("配置文件解析失败: %v", err)
    }
    // 重试参数默认值
    if AppConfig.Retry.MaxAttempts <= 0 {
        AppConfig.Retry.MaxAttempts = 5
    }
    if AppConfig.Retry.BaseDelayMs <= 0 {
        AppConfig.Retry.BaseDelayMs = 2000
    }
}
