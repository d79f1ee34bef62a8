package service

import (
	"context"

	"qa-paper-be/internal/dto"
	"qa-paper-be/internal/language"
	"qa-paper-be/internal/pkg/logger"
	"qa-paper-be/internal/repository/contract"
)

type IAdminService interface {
	Languages() *dto.LanguageListResponse
	Logs(level string, limit, offset int) ([]dto.LogDetailResponse, error)
	KnowledgeStats(ctx context.Context) ([]dto.KnowledgeStatsResponse, error)
}

// LogReader is the slice of the logger the admin surface needs. The zap
// logger implements it; test doubles fake it.
type LogReader interface {
	GetLogs(level string, limit, offset int) ([]logger.LogEntry, error)
}

type adminService struct {
	logs      LogReader
	knowledge contract.KnowledgeRepository
}

func NewAdminService(logs LogReader, knowledge contract.KnowledgeRepository) IAdminService {
	return &adminService{logs: logs, knowledge: knowledge}
}

func (s *adminService) Languages() *dto.LanguageListResponse {
	return &dto.LanguageListResponse{Languages: language.Supported()}
}

func (s *adminService) Logs(level string, limit, offset int) ([]dto.LogDetailResponse, error) {
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	entries, err := s.logs.GetLogs(level, limit, offset)
	if err != nil {
		return nil, err
	}

	out := make([]dto.LogDetailResponse, len(entries))
	for i, e := range entries {
		out[i] = dto.LogDetailResponse{
			LogListResponse: dto.LogListResponse{
				Timestamp: e.Timestamp,
				Level:     e.Level,
				Module:    e.Module,
				Message:   e.Message,
			},
			Details: e.Details,
		}
	}
	return out, nil
}

// KnowledgeStats reports corpus size per supported language, nil repository
// meaning the retrieval backend is not configured.
func (s *adminService) KnowledgeStats(ctx context.Context) ([]dto.KnowledgeStatsResponse, error) {
	if s.knowledge == nil {
		return []dto.KnowledgeStatsResponse{}, nil
	}

	var stats []dto.KnowledgeStatsResponse
	for _, cfg := range language.Supported() {
		count, err := s.knowledge.CountByLanguage(ctx, cfg.Code)
		if err != nil {
			return nil, err
		}
		if count > 0 {
			stats = append(stats, dto.KnowledgeStatsResponse{Language: cfg.Code, Entries: count})
		}
	}
	return stats, nil
}
