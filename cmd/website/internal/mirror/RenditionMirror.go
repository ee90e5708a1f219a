package mirror

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/jpeg"
	_ "image/png"
	"io"
	"log/slog"
	"net/http"
	"path"
	"strings"
	"sync/atomic"
	"time"

	"github.com/adampresley/adamgokit/httphelpers"
	"github.com/adampresley/adamgokit/s3"
	"github.com/adampresley/adamgokit/s3/createbucketoptions"
	"github.com/adampresley/adamgokit/s3/listoptions"
	"github.com/adampresley/adamgokit/slices"
	"github.com/adampresley/imagegallery/pkg/content"
	"github.com/adampresley/imagegallery/pkg/models"
	"github.com/adampresley/imagegallery/pkg/services"
	"github.com/alitto/pond/v2"
	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/nfnt/resize"
)

const (
	thumbnailFileName      = "thumbnail.jpg"
	thumbnailMaxSize       = 400
	thumbnailLookupTimeout = 3 * time.Second
)

type RenditionMirror interface {
	services.ThumbnailFallback
	Run()
}

type RenditionMirrorConfig struct {
	AwsBucket     string
	AwsRegion     string
	ContentClient content.Client
	Folder        string
	HTTPClient    httphelpers.HttpClient
	MaxWorkers    int
	S3Client      s3.S3Client
	ShutdownCtx   context.Context
}

/*
RenditionMirrorService generates thumbnails for items that the content
source publishes without a Thumbnail rendition, and keeps them in S3
under {Folder}/{itemID}/thumbnail.jpg.
*/
type RenditionMirrorService struct {
	awsBucket     string
	awsRegion     string
	contentClient content.Client
	folder        string
	httpClient    httphelpers.HttpClient
	maxWorkers    int
	running       *atomic.Bool
	s3Client      s3.S3Client
	shutdownCtx   context.Context
}

func NewRenditionMirrorService(config RenditionMirrorConfig) RenditionMirrorService {
	if config.HTTPClient == nil {
		config.HTTPClient = http.DefaultClient
	}

	if config.MaxWorkers <= 0 {
		config.MaxWorkers = 4
	}

	return RenditionMirrorService{
		awsBucket:     config.AwsBucket,
		awsRegion:     config.AwsRegion,
		contentClient: config.ContentClient,
		folder:        config.Folder,
		httpClient:    config.HTTPClient,
		maxWorkers:    config.MaxWorkers,
		running:       &atomic.Bool{},
		s3Client:      config.S3Client,
		shutdownCtx:   config.ShutdownCtx,
	}
}

/*
ThumbnailURL returns the URL of a mirrored thumbnail, if one has been
generated for the item. The S3 client takes no context, so the lookup
runs on its own goroutine and is abandoned once ctx is done or
thumbnailLookupTimeout passes.
*/
func (m RenditionMirrorService) ThumbnailURL(ctx context.Context, itemID string) (string, bool) {
	type lookupResult struct {
		url string
		ok  bool
	}

	ctx, cancel := context.WithTimeout(ctx, thumbnailLookupTimeout)
	defer cancel()

	done := make(chan lookupResult, 1)

	go func() {
		u, ok := m.lookupThumbnailURL(itemID)
		done <- lookupResult{url: u, ok: ok}
	}()

	select {
	case <-ctx.Done():
		slog.Warn("mirrored thumbnail lookup abandoned", "itemID", itemID, "error", ctx.Err())
		return "", false

	case result := <-done:
		return result.url, result.ok
	}
}

func (m RenditionMirrorService) lookupThumbnailURL(itemID string) (string, bool) {
	var (
		err  error
		stat *s3.ObjectMetadata
		u    string
	)

	key := thumbnailKey(m.folder, itemID)

	if stat, err = m.s3Client.StatObject(m.awsBucket, key); err != nil || stat == nil {
		return "", false
	}

	if u, err = m.s3Client.GetUrl(m.awsBucket, key); err != nil {
		slog.Error("error getting mirrored thumbnail URL", "itemID", itemID, "key", key, "error", err)
		return "", false
	}

	return u, true
}

/*
Run walks every category's items once. It returns straight away when a
previous run has not finished yet.
*/
func (m RenditionMirrorService) Run() {
	var (
		err        error
		categories []models.Category
		mirrored   map[string]struct{}
	)

	if !m.running.CompareAndSwap(false, true) {
		slog.Info("rendition mirror already running. skipping...")
		return
	}

	defer m.running.Store(false)

	slog.Info("starting rendition mirror...")

	if err = m.ensureBucketExists(m.awsBucket); err != nil {
		slog.Error("error ensuring bucket exists. aborting", "bucket", m.awsBucket, "error", err)
		return
	}

	if mirrored, err = m.getMirroredItemIDs(); err != nil {
		slog.Error("error listing mirrored thumbnails", "error", err)
		return
	}

	if categories, err = m.getAllCategories(); err != nil {
		slog.Error("error retrieving categories from content source", "error", err)
		return
	}

	pool := pond.NewPool(m.maxWorkers, pond.WithContext(m.shutdownCtx))
	seen := map[string]struct{}{}
	var created atomic.Int64

	for _, category := range categories {
		list, err := m.contentClient.ListItems(m.shutdownCtx, category.ID, services.GridItemLimit)

		if err != nil {
			slog.Error("error retrieving items for category", "categoryID", category.ID, "error", err)
			continue
		}

		for _, item := range list.Items {
			if _, ok := seen[item.ID]; ok {
				continue
			}

			seen[item.ID] = struct{}{}

			if _, ok := mirrored[item.ID]; ok {
				continue
			}

			pool.Submit(func() {
				ok, err := m.mirrorItem(item.ID)

				if err != nil {
					slog.Error("error mirroring thumbnail for item", "itemID", item.ID, "categoryID", category.ID, "error", err)
					return
				}

				if ok {
					created.Add(1)
				}
			})
		}
	}

	_ = pool.Stop().Wait()
	slog.Info("rendition mirror finished", "items", len(seen), "created", created.Load())
}

/*
mirrorItem creates a thumbnail for one item when the source has none.
It returns false when there was nothing to do.
*/
func (m RenditionMirrorService) mirrorItem(itemID string) (bool, error) {
	var (
		err  error
		urls map[string]string
		img  image.Image
		buf  bytes.Buffer
	)

	if urls, err = m.contentClient.GetRenditionURLs(m.shutdownCtx, itemID); err != nil {
		return false, fmt.Errorf("error getting renditions: %w", err)
	}

	if _, ok := urls[models.RenditionThumbnail]; ok {
		return false, nil
	}

	nativeURL, ok := urls[models.RenditionNative]
	if !ok {
		return false, nil
	}

	slog.Info("creating mirrored thumbnail...", "itemID", itemID)

	if img, err = m.resizeUrl(nativeURL, thumbnailMaxSize); err != nil {
		return false, err
	}

	if err = jpeg.Encode(&buf, img, &jpeg.Options{Quality: 85}); err != nil {
		return false, fmt.Errorf("error encoding image for thumbnail: %w", err)
	}

	if _, err = m.s3Client.Put(m.awsBucket, thumbnailKey(m.folder, itemID), &buf); err != nil {
		return false, fmt.Errorf("error uploading thumbnail to S3: %w", err)
	}

	return true, nil
}

func (m RenditionMirrorService) getAllCategories() ([]models.Category, error) {
	var (
		err        error
		taxonomies []models.Taxonomy
		categories []models.Category
	)

	if taxonomies, err = m.contentClient.ListTaxonomies(m.shutdownCtx); err != nil {
		return nil, fmt.Errorf("error listing taxonomies: %w", err)
	}

	result := []models.Category{}

	for _, taxonomy := range taxonomies {
		if categories, err = m.contentClient.ListCategories(m.shutdownCtx, taxonomy.ID); err != nil {
			return nil, fmt.Errorf("error listing categories for taxonomy %s: %w", taxonomy.ID, err)
		}

		result = append(result, categories...)
	}

	return result, nil
}

func (m RenditionMirrorService) getMirroredItemIDs() (map[string]struct{}, error) {
	var (
		err      error
		response s3.ListResponse
		validExt = []string{".jpg", ".jpeg"}
	)

	response, err = m.s3Client.List(
		m.awsBucket,
		m.folder,
		listoptions.WithGetAll(),
		listoptions.WithFilter(func(obj types.Object) bool {
			ext := strings.ToLower(path.Ext(aws.ToString(obj.Key)))
			return slices.IsInSlice(ext, validExt)
		}),
	)

	if err != nil {
		return nil, fmt.Errorf("error listing mirror folder: %w", err)
	}

	result := map[string]struct{}{}

	for _, obj := range response.Objects {
		if itemID, ok := itemIDFromKey(m.folder, obj.Key); ok {
			result[itemID] = struct{}{}
		}
	}

	return result, nil
}

func (m RenditionMirrorService) ensureBucketExists(bucketName string) error {
	var (
		err    error
		exists bool
	)

	if exists, err = m.s3Client.BucketExists(bucketName); err != nil {
		return fmt.Errorf("error ensuring bucket '%s' exists: %w", bucketName, err)
	}

	if exists {
		return nil
	}

	slog.Info("creating bucket", "bucketName", bucketName)

	err = m.s3Client.CreateBucket(
		bucketName,
		createbucketoptions.WithRegion(m.awsRegion),
	)

	if err != nil {
		return fmt.Errorf("error creating bucket '%s': %w", bucketName, err)
	}

	return nil
}

func (m RenditionMirrorService) resizeUrl(url string, maxSize uint) (image.Image, error) {
	var (
		err      error
		req      *http.Request
		response *http.Response
	)

	if req, err = http.NewRequestWithContext(m.shutdownCtx, http.MethodGet, url, nil); err != nil {
		return nil, fmt.Errorf("error building request for '%s': %w", url, err)
	}

	if response, err = m.httpClient.Do(req); err != nil {
		return nil, fmt.Errorf("error downloading image from '%s': %w", url, err)
	}

	defer response.Body.Close()

	if response.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("error downloading image from '%s', status: %s", url, response.Status)
	}

	return resizeReader(response.Body, maxSize)
}

func resizeReader(r io.Reader, maxSize uint) (image.Image, error) {
	var (
		err error
		img image.Image
	)

	if img, _, err = image.Decode(r); err != nil {
		return nil, fmt.Errorf("error decoding image: %w", err)
	}

	return resizeToFit(img, maxSize), nil
}

// resizeToFit scales img so its longest edge is maxSize.
func resizeToFit(img image.Image, maxSize uint) image.Image {
	bounds := img.Bounds()
	width := uint(bounds.Dx())
	height := uint(bounds.Dy())

	var newWidth, newHeight uint
	if width > height {
		newWidth = maxSize
		newHeight = uint(float64(height) * (float64(maxSize) / float64(width)))
	} else {
		newHeight = maxSize
		newWidth = uint(float64(width) * (float64(maxSize) / float64(height)))
	}

	return resize.Resize(newWidth, newHeight, img, resize.Lanczos3)
}

func thumbnailKey(folder, itemID string) string {
	return path.Join(folder, itemID, thumbnailFileName)
}

func itemIDFromKey(folder, key string) (string, bool) {
	rest := strings.TrimPrefix(strings.TrimPrefix(key, strings.TrimSuffix(folder, "/")), "/")
	itemID, fileName, found := strings.Cut(rest, "/")

	if !found || itemID == "" || fileName != thumbnailFileName {
		return "", false
	}

	return itemID, true
}
