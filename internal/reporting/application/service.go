package application

import (
	"context"
	"errors"
	"fmt"
	"time"

	lendingdomain "github.com/wyfcoding/librarylending/internal/lending/domain"
	"github.com/wyfcoding/librarylending/internal/reporting/domain"
	"github.com/wyfcoding/librarylending/pkg/cache"
	"github.com/wyfcoding/librarylending/pkg/logger"
	"github.com/wyfcoding/librarylending/pkg/metrics"
)

// 报表名称，同时作为导出路径参数
const (
	ReportOverdueLastMonth   = "overdue-last-month"
	ReportBorrowingLastMonth = "borrowing-last-month"
)

var (
	ErrUnknownReport = errors.New("unknown report")
	ErrUnknownFormat = errors.New("unknown export format")
)

const cacheTTL = 5 * time.Minute

// ReportingService 报表查询与导出。查询结果在 Redis 中短暂缓存，
// 报表允许分钟级滞后，写路径不做失效。
type ReportingService struct {
	repo    domain.HistoryRepository
	cache   *cache.RedisCache
	metrics *metrics.Metrics
	now     func() time.Time
}

func NewReportingService(repo domain.HistoryRepository, redisCache *cache.RedisCache, m *metrics.Metrics) *ReportingService {
	return &ReportingService{repo: repo, cache: redisCache, metrics: m, now: time.Now}
}

// OverdueLastMonth 上个日历月内借出、当前仍逾期未还的记录
func (s *ReportingService) OverdueLastMonth(ctx context.Context) ([]*lendingdomain.BorrowingRecord, error) {
	return s.cached(ctx, ReportOverdueLastMonth, func(now, start, end time.Time) ([]*lendingdomain.BorrowingRecord, error) {
		return s.repo.ListOverdueCheckedOutBetween(ctx, now, start, end)
	})
}

// BorrowingLastMonth 上个日历月内的全部借阅记录
func (s *ReportingService) BorrowingLastMonth(ctx context.Context) ([]*lendingdomain.BorrowingRecord, error) {
	return s.cached(ctx, ReportBorrowingLastMonth, func(_, start, end time.Time) ([]*lendingdomain.BorrowingRecord, error) {
		return s.repo.ListCheckedOutBetween(ctx, start, end)
	})
}

func (s *ReportingService) cached(ctx context.Context, report string, load func(now, start, end time.Time) ([]*lendingdomain.BorrowingRecord, error)) ([]*lendingdomain.BorrowingRecord, error) {
	now := s.now()
	start, end := domain.LastMonthWindow(now)
	key := fmt.Sprintf("reports:%s:%s", report, start.Format("2006-01"))

	if s.cache != nil {
		var records []*lendingdomain.BorrowingRecord
		hit, err := s.cache.GetJSON(ctx, key, &records)
		if err != nil {
			logger.Warn(ctx, "report cache read failed", "report", report, "error", err)
		} else if hit {
			return records, nil
		}
	}

	records, err := load(now, start, end)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if err := s.cache.SetJSON(ctx, key, records, cacheTTL); err != nil {
			logger.Warn(ctx, "report cache write failed", "report", report, "error", err)
		}
	}

	logger.Info(ctx, "report generated",
		"report", report,
		"window_start", start.Format("2006-01-02"),
		"window_end", end.Format("2006-01-02"),
		"records", len(records),
	)

	return records, nil
}

// ExportFile 导出产物
type ExportFile struct {
	Name        string
	ContentType string
	Data        []byte
}

// Export 生成报表文件，format 支持 csv 与 xlsx
func (s *ReportingService) Export(ctx context.Context, report, format string) (*ExportFile, error) {
	var (
		records []*lendingdomain.BorrowingRecord
		err     error
	)
	switch report {
	case ReportOverdueLastMonth:
		records, err = s.OverdueLastMonth(ctx)
	case ReportBorrowingLastMonth:
		records, err = s.BorrowingLastMonth(ctx)
	default:
		return nil, ErrUnknownReport
	}
	if err != nil {
		return nil, err
	}

	now := s.now()
	rows := domain.BuildRows(records, now)
	name := fmt.Sprintf("%s-%s", report, now.Format("2006-01-02"))

	var file *ExportFile
	switch format {
	case "csv":
		data, err := writeCSV(rows)
		if err != nil {
			return nil, err
		}
		file = &ExportFile{Name: name + ".csv", ContentType: "text/csv; charset=utf-8", Data: data}
	case "xlsx":
		data, err := writeXLSX(rows)
		if err != nil {
			return nil, err
		}
		file = &ExportFile{
			Name:        name + ".xlsx",
			ContentType: "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
			Data:        data,
		}
	default:
		return nil, ErrUnknownFormat
	}

	if s.metrics != nil {
		s.metrics.ReportExportsTotal.WithLabelValues(report, format).Inc()
	}

	return file, nil
}
