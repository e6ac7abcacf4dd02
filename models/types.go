package models

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"
)

// CinematicPrompt 单个场景的电影化提示词包（整体生成、整体替换）
type CinematicPrompt struct {
	DialogueInstruction string `json:"dialogueInstruction"`
	MainPrompt          string `json:"mainPrompt"`
	NegativePrompt      string `json:"negativePrompt"`
}

// SeoPlatform 单平台的 SEO 内容
type SeoPlatform struct {
	Description string   `json:"description"`
	Hashtags    []string `json:"hashtags"`
}

// SeoBundle 整个项目的 SEO 包，按平台划分；只整体替换，不做字段级更新
type SeoBundle struct {
	Title     string                 `json:"title"`
	Platforms map[string]SeoPlatform `json:"platforms"`
}

// StringList 存为 JSON 数组的字符串列表（场景内角色名）
type StringList []string

// 实现 driver.Valuer 接口: Go Struct -> JSON String (存入数据库)
func (p CinematicPrompt) Value() (driver.Value, error) {
	return json.Marshal(p)
}

// 实现 sql.Scanner 接口: JSON String -> Go Struct (从数据库读取)
func (p *CinematicPrompt) Scan(value interface{}) error {
	if value == nil {
		return nil
	}
	bytes, ok := value.([]byte)
	if !ok {
		return errors.New(fmt.Sprint("Failed to unmarshal JSONB value:", value))
	}
	return json.Unmarshal(bytes, p)
}

// 实现 driver.Valuer 接口
func (s SeoBundle) Value() (driver.Value, error) {
	return json.Marshal(s)
}

// 实现 sql.Scanner 接口
func (s *SeoBundle) Scan(value interface{}) error {
	if value == nil {
		return nil
	}
	bytes, ok := value.([]byte)
	if !ok {
		return errors.New(fmt.Sprint("Failed to unmarshal JSONB value:", value))
	}
	return json.Unmarshal(bytes, s)
}

func (l StringList) Value() (driver.Value, error) {
	return json.Marshal(l)
}

func (l *StringList) Scan(value interface{}) error {
	if value == nil {
		return nil
	}
	bytes, ok := value.([]byte)
	if !ok {
		return errors.New(fmt.Sprint("Failed to unmarshal JSONB value:", value))
	}
	return json.Unmarshal(bytes, l)
}
