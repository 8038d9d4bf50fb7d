package service

import (
	"context"
	"errors"
	"fmt"
	"mime/multipart"
	"path/filepath"
	"strings"

	"nutriquiz_backend/internal/config"
	"nutriquiz_backend/internal/model"
	"nutriquiz_backend/internal/repository"
	"nutriquiz_backend/internal/util"
	"nutriquiz_backend/pkg/logger"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// ChartService 管理热量图表参考数据，报告引擎依赖每个档位都有配置
type ChartService struct {
	chartRepo *repository.ChartRepository
	storage   *StorageService
	cfg       *config.Config
}

func NewChartService(chartRepo *repository.ChartRepository, storage *StorageService, cfg *config.Config) *ChartService {
	return &ChartService{chartRepo: chartRepo, storage: storage, cfg: cfg}
}

func (s *ChartService) uploadImage(ctx context.Context, file *multipart.FileHeader) (string, error) {
	ext := strings.ToLower(filepath.Ext(file.Filename))
	allowed := false
	for _, e := range util.AllowedImageExtensions {
		if e == ext {
			allowed = true
			break
		}
	}
	if !allowed {
		return "", fmt.Errorf("unsupported image extension: %s", ext)
	}

	src, err := file.Open()
	if err != nil {
		return "", err
	}
	defer src.Close()

	contentType := file.Header.Get("Content-Type")
	if contentType == "" {
		contentType = util.MimeOctetStream
	}

	objectName := fmt.Sprintf("charts/%s%s", uuid.New().String(), ext)
	return s.storage.Provider.Upload(ctx, objectName, src, file.Size, contentType)
}

func (s *ChartService) removeImage(ctx context.Context, imagePath string) {
	if imagePath == "" {
		return
	}
	name := strings.TrimPrefix(imagePath, "/uploads/")
	if err := s.storage.Provider.Delete(ctx, name); err != nil {
		logger.Log.Warn("chart image delete failed", zap.String("image", imagePath), zap.Error(err))
	}
}

func (s *ChartService) CreateChart(ctx context.Context, value int, description string, image *multipart.FileHeader) (*model.Chart, error) {
	exists, err := s.chartRepo.ExistsByValue(value, 0)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, util.ErrChartDuplicate
	}

	imageURL, err := s.uploadImage(ctx, image)
	if err != nil {
		return nil, err
	}

	chart := &model.Chart{Value: value, Image: imageURL, Description: description}
	if err := s.chartRepo.Create(chart); err != nil {
		s.removeImage(ctx, imageURL)
		return nil, err
	}
	return chart, nil
}

func (s *ChartService) ListCharts() ([]model.Chart, error) {
	charts, err := s.chartRepo.ListAll()
	if err != nil {
		return nil, err
	}
	for i := range charts {
		charts[i].Image = util.MakeAbsoluteURL(s.cfg.Server.BaseURL, charts[i].Image)
	}
	return charts, nil
}

// UpdateChart 更新档位或文案，换图时顺带清掉旧图
func (s *ChartService) UpdateChart(ctx context.Context, id uint, value *int, description *string, image *multipart.FileHeader) (*model.Chart, error) {
	chart, err := s.chartRepo.FindByID(id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, util.ErrChartNotFound
	}
	if err != nil {
		return nil, err
	}

	if value != nil && *value != chart.Value {
		exists, err := s.chartRepo.ExistsByValue(*value, id)
		if err != nil {
			return nil, err
		}
		if exists {
			return nil, util.ErrChartDuplicate
		}
		chart.Value = *value
	}
	if description != nil {
		chart.Description = *description
	}

	if image != nil {
		imageURL, err := s.uploadImage(ctx, image)
		if err != nil {
			return nil, err
		}
		oldImage := chart.Image
		chart.Image = imageURL
		if err := s.chartRepo.Update(chart); err != nil {
			s.removeImage(ctx, imageURL)
			return nil, err
		}
		s.removeImage(ctx, oldImage)
		return chart, nil
	}

	if err := s.chartRepo.Update(chart); err != nil {
		return nil, err
	}
	return chart, nil
}

func (s *ChartService) DeleteChart(ctx context.Context, id uint) error {
	chart, err := s.chartRepo.FindByID(id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return util.ErrChartNotFound
	}
	if err != nil {
		return err
	}

	if err := s.chartRepo.Delete(id); err != nil {
		return err
	}
	s.removeImage(ctx, chart.Image)
	return nil
}
