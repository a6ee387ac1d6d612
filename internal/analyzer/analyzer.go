package analyzer

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/acavemancodes/Snistplacements/internal/types"
)

const (
	SkipNoCompany = "no_company" // 没有达到阈值的公司名
	SkipNoData    = "no_data"    // 只有公司名，没有其他字段
)

// Extractor is the part of *extractor.Extractor the analyzer drives.
type Extractor interface {
	TryExtract(email types.Email) (types.JobPosting, bool, error)
}

// 招聘邮件分析器
type JobAnalyzer struct {
	extractor Extractor
	logger    *zap.Logger
	metrics   *Metrics
	workers   int
}

// 创建分析器. logger 和 metrics 可以为 nil
func NewJobAnalyzer(ex Extractor, logger *zap.Logger, metrics *Metrics, workers int) *JobAnalyzer {
	if logger == nil {
		logger = zap.NewNop()
	}
	if workers <= 0 {
		workers = 1
	}
	return &JobAnalyzer{
		extractor: ex,
		logger:    logger,
		metrics:   metrics,
		workers:   workers,
	}
}

// 批量分析邮件. 结果保持输入顺序, 单封邮件失败不影响其他邮件
func (ja *JobAnalyzer) AnalyzeEmails(ctx context.Context, emails []types.Email) ([]types.JobPosting, error) {
	start := time.Now()
	log := ja.logger.With(zap.String("batch_id", uuid.NewString()))
	log.Info("analyzing emails", zap.Int("count", len(emails)), zap.Int("workers", ja.workers))

	results := make([]*types.JobPosting, len(emails))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(ja.workers)

	for i, email := range emails {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			if p, ok := ja.analyzeEmail(log, i, len(emails), email); ok {
				results[i] = &p
			}
			return nil
		})
	}
	err := g.Wait()
	if err == nil {
		err = ctx.Err()
	}

	postings := make([]types.JobPosting, 0, len(emails))
	for _, p := range results {
		if p != nil {
			postings = append(postings, *p)
		}
	}

	log.Info("analysis finished",
		zap.Int("postings", len(postings)),
		zap.Duration("elapsed", time.Since(start)))
	if err != nil {
		return postings, fmt.Errorf("analyze emails: %w", err)
	}
	return postings, nil
}

func (ja *JobAnalyzer) analyzeEmail(log *zap.Logger, i, total int, email types.Email) (p types.JobPosting, ok bool) {
	fields := []zap.Field{
		zap.Int("index", i+1),
		zap.Int("total", total),
		zap.String("message_id", email.MessageID),
		zap.String("subject", email.Subject),
	}

	start := time.Now()
	defer func() {
		if r := recover(); r != nil {
			ja.metrics.recordFailure()
			log.Warn("extraction failed", append(fields, zap.Any("panic", r))...)
			p, ok = types.JobPosting{}, false
		}
	}()

	p, found, err := ja.extractor.TryExtract(email)
	ja.metrics.recordProcessed(time.Since(start).Seconds())
	switch {
	case err != nil:
		ja.metrics.recordFailure()
		log.Warn("extraction failed", append(fields, zap.Error(err))...)
		return types.JobPosting{}, false
	case !found:
		ja.metrics.recordSkipped(SkipNoCompany)
		log.Debug("no company found", fields...)
		return types.JobPosting{}, false
	case !p.HasValidData:
		ja.metrics.recordSkipped(SkipNoData)
		log.Debug("company without posting details", append(fields, zap.String("company", p.Company))...)
		return types.JobPosting{}, false
	}

	ja.metrics.recordPosting()
	log.Debug("posting found", append(fields,
		zap.String("company", p.Company),
		zap.String("salary", p.Salary),
		zap.String("last_date", p.LastDate))...)
	return p, true
}
