package dto

import "qa-paper-be/internal/language"

type LanguageListResponse struct {
	Languages []language.Config `json:"languages"`
}

// --- System Log DTOs ---

type LogListResponse struct {
	Timestamp string `json:"timestamp"`
	Level     string `json:"level"`
	Module    string `json:"module"`
	Message   string `json:"message"`
}

type LogDetailResponse struct {
	LogListResponse
	Details map[string]interface{} `json:"details"`
}

type KnowledgeStatsResponse struct {
	Language string `json:"language"`
	Entries  int64  `json:"entries"`
}
