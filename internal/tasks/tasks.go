package tasks

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"image"
	"image/jpeg"
	_ "image/png" // registers the PNG decoder for image.Decode
	"io"
	"log"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
	"github.com/nfnt/resize"
	"github.com/redis/go-redis/v9"

	"github.com/vibhu2208/Aadhar-Homes/internal/config"
	"github.com/vibhu2208/Aadhar-Homes/internal/models"
	"github.com/vibhu2208/Aadhar-Homes/internal/services"
	"github.com/vibhu2208/Aadhar-Homes/internal/storage"
	"github.com/vibhu2208/Aadhar-Homes/internal/utils"
)

// Task types.
const (
	TypeStatsSnapshot = "stats:snapshot"
	TypeThumbnail     = "media:thumbnail"
)

// NewClient creates an asynq client backed by the given Redis connection.
func NewClient(rdb *redis.Client) *asynq.Client {
	return asynq.NewClient(asynq.RedisClientOpt{
		Addr:     rdb.Options().Addr,
		Password: rdb.Options().Password,
		DB:       rdb.Options().DB,
	})
}

// ThumbnailPayload identifies the listing and the source image a thumbnail
// is generated from.
type ThumbnailPayload struct {
	ListingID string `json:"listing_id"`
	Category  string `json:"category"`
	SourceURL string `json:"source_url"`
}

// NewThumbnailTask builds a thumbnail generation task.
func NewThumbnailTask(listingID utils.SixID, category models.Category, sourceURL string) (*asynq.Task, error) {
	payload, err := json.Marshal(ThumbnailPayload{
		ListingID: listingID.String(),
		Category:  string(category),
		SourceURL: sourceURL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal thumbnail payload: %w", err)
	}
	return asynq.NewTask(TypeThumbnail, payload, asynq.Queue("images")), nil
}

// NewStatsSnapshotTask builds a stats recomputation task.
func NewStatsSnapshotTask() *asynq.Task {
	return asynq.NewTask(TypeStatsSnapshot, nil, asynq.Queue("default"))
}

// TaskProcessor handles the processing of tasks. It holds the dependencies
// the task handlers need.
type TaskProcessor struct {
	cfg            *config.Config
	listingService services.IListingService
	mediaStorage   storage.IMediaStorage
	taskClient     *asynq.Client
	httpClient     *http.Client
}

// NewTaskProcessor creates a TaskProcessor.
func NewTaskProcessor(
	cfg *config.Config,
	listingService services.IListingService,
	mediaStorage storage.IMediaStorage,
	taskClient *asynq.Client,
) *TaskProcessor {
	return &TaskProcessor{
		cfg:            cfg,
		listingService: listingService,
		mediaStorage:   mediaStorage,
		taskClient:     taskClient,
		httpClient:     &http.Client{Timeout: 30 * time.Second},
	}
}

// SetupServer configures an asynq server and its handler mux for background
// processing. The caller runs the server.
func SetupServer(rdb *redis.Client, processor *TaskProcessor) (*asynq.Server, *asynq.ServeMux) {
	srv := asynq.NewServer(
		asynq.RedisClientOpt{
			Addr:     rdb.Options().Addr,
			Password: rdb.Options().Password,
			DB:       rdb.Options().DB,
		},
		asynq.Config{
			Queues: map[string]int{
				"critical": 6,
				"default":  3,
				"images":   5,
				"low":      1,
			},
			ErrorHandler: asynq.ErrorHandlerFunc(func(ctx context.Context, task *asynq.Task, err error) {
				log.Printf("[Asynq Error] Task Type: %s, Payload: %s, Error: %v", task.Type(), string(task.Payload()), err)
			}),
		},
	)

	mux := asynq.NewServeMux()
	mux.HandleFunc(TypeStatsSnapshot, processor.HandleStatsSnapshotTask)
	mux.HandleFunc(TypeThumbnail, processor.HandleThumbnailTask)
	log.Println("Registered background task handlers.")

	return srv, mux
}

// HandleStatsSnapshotTask recomputes the cached dashboard stats for both
// listing categories and re-enqueues itself for the next interval, so the
// cache stays warm without any external scheduler.
func (p *TaskProcessor) HandleStatsSnapshotTask(ctx context.Context, t *asynq.Task) error {
	for _, category := range []models.Category{models.CategoryProject, models.CategoryNewLaunch} {
		if _, err := p.listingService.RefreshStats(ctx, category); err != nil {
			log.Printf("Stats snapshot failed for %s: %v", category, err)
			return err
		}
	}

	taskInfo, err := p.taskClient.EnqueueContext(ctx, NewStatsSnapshotTask(), asynq.ProcessIn(p.cfg.StatsSnapshotInterval))
	if err != nil {
		log.Printf("ERROR failed to re-enqueue stats snapshot task: %v", err)
		return err
	}
	log.Printf("Stats snapshot done. Re-enqueued task %s to run in %v.", taskInfo.ID, p.cfg.StatsSnapshotInterval)
	return nil
}

// HandleThumbnailTask downloads a listing's front image, scales it down and
// stores the result as the listing's thumbnail.
func (p *TaskProcessor) HandleThumbnailTask(ctx context.Context, t *asynq.Task) error {
	var payload ThumbnailPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return fmt.Errorf("failed to unmarshal thumbnail payload: %v: %w", err, asynq.SkipRetry)
	}

	listingID, err := utils.ParseSixID(payload.ListingID)
	if err != nil {
		log.Printf("Invalid listing ID in thumbnail payload: %s", payload.ListingID)
		return fmt.Errorf("invalid listing ID in payload: %w", asynq.SkipRetry)
	}
	category := models.Category(payload.Category)
	if !category.Valid() {
		return fmt.Errorf("invalid category %q in payload: %w", payload.Category, asynq.SkipRetry)
	}

	imgData, err := p.fetchImage(ctx, payload.SourceURL)
	if err != nil {
		return err
	}

	img, format, err := image.Decode(bytes.NewReader(imgData))
	if err != nil {
		log.Printf("Error decoding source image for listing %s: %v", payload.ListingID, err)
		return fmt.Errorf("unsupported image format or corrupt image: %w", asynq.SkipRetry)
	}
	log.Printf("Decoded %s image %dx%d for listing %s", format, img.Bounds().Dx(), img.Bounds().Dy(), payload.ListingID)

	maxDim := uint(p.cfg.ThumbnailMaxDim)
	thumb := resize.Thumbnail(maxDim, maxDim, img, resize.Lanczos3)

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, thumb, &jpeg.Options{Quality: 85}); err != nil {
		return fmt.Errorf("failed to encode thumbnail: %w", err)
	}

	key := fmt.Sprintf("thumbnails/%s.jpg", uuid.NewString())
	if err := p.mediaStorage.PutObject(ctx, key, "image/jpeg", buf.Bytes()); err != nil {
		return err
	}

	asset := models.MediaAsset{
		PublicID: key,
		URL:      p.mediaStorage.PublicURL(key),
		CDNURL:   p.mediaStorage.PublicURL(key),
	}
	if err := p.listingService.SetThumbnail(ctx, category, listingID, asset); err != nil {
		return fmt.Errorf("failed to store thumbnail for listing %s: %w", payload.ListingID, err)
	}

	log.Printf("Thumbnail generated for listing %s: %s", payload.ListingID, key)
	return nil
}

func (p *TaskProcessor) fetchImage(ctx context.Context, sourceURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, sourceURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build image request: %v: %w", err, asynq.SkipRetry)
	}

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch source image %s: %w", sourceURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		if resp.StatusCode == http.StatusNotFound || resp.StatusCode == http.StatusGone {
			return nil, fmt.Errorf("source image %s gone (status %d): %w", sourceURL, resp.StatusCode, asynq.SkipRetry)
		}
		return nil, fmt.Errorf("unexpected status %d fetching source image %s", resp.StatusCode, sourceURL)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read source image body: %w", err)
	}
	return data, nil
}
