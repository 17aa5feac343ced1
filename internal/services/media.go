package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	appconfig "layer-backend/internal/config"
	"layer-backend/internal/models"
	"layer-backend/internal/repository"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
)

const uploadExpiry = 5 * time.Minute

// MediaService issues pre-signed S3 upload URLs for layer photos and
// resolves stored photo references to retrievable URLs. The engine itself
// stores only object keys.
type MediaService struct {
	profiles ProfileStore
	layers   LayerStore
	s3Client *s3.Client
	bucket   string
	region   string
}

// NewMediaService creates a new media service
func NewMediaService(profiles ProfileStore, layers LayerStore, cfg appconfig.AWSConfig) (*MediaService, error) {
	opts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(cfg.Region),
	}
	if cfg.AccessKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, ""),
		))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(context.Background(), opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	s3Client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		}
	})

	return &MediaService{
		profiles: profiles,
		layers:   layers,
		s3Client: s3Client,
		bucket:   cfg.S3Bucket,
		region:   cfg.Region,
	}, nil
}

// UploadResponse carries a pre-signed upload URL for one photo slot.
type UploadResponse struct {
	UploadURL string `json:"upload_url"`
	PhotoKey  string `json:"photo_key"`
	ExpiresIn int    `json:"expires_in"`
}

// PresignLayerPhoto generates a pre-signed PUT URL for a photo on one of
// the caller's own layers and records the object key on the layer.
func (s *MediaService) PresignLayerPhoto(ctx context.Context, accountID, layerID, contentType string) (*UploadResponse, error) {
	profile, err := s.profiles.GetByAccountID(ctx, accountID)
	if err != nil {
		return nil, fmt.Errorf("uploader has no profile: %w", ErrProfileRequired)
	}

	layer, err := s.layers.GetByID(ctx, layerID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("layer %s: %w", layerID, ErrNotFound)
		}
		return nil, err
	}
	if layer.ProfileID != profile.ID {
		return nil, ErrForbidden
	}

	key := fmt.Sprintf("layers/%s/%s.jpg", layerID, uuid.New().String())

	presignClient := s3.NewPresignClient(s.s3Client)
	request, err := presignClient.PresignPutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		ContentType: aws.String(contentType),
	}, func(opts *s3.PresignOptions) {
		opts.Expires = uploadExpiry
	})
	if err != nil {
		return nil, fmt.Errorf("failed to generate pre-signed URL: %w", err)
	}

	if err := s.layers.AppendPhoto(ctx, layerID, key); err != nil {
		return nil, fmt.Errorf("failed to record photo reference: %w", err)
	}

	return &UploadResponse{
		UploadURL: request.URL,
		PhotoKey:  key,
		ExpiresIn: int(uploadExpiry.Seconds()),
	}, nil
}

// PublicURL resolves a stored photo key to a retrievable URL.
func (s *MediaService) PublicURL(key string) string {
	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", s.bucket, s.region, key)
}

// ResolvePhotoURLs returns copies of the layers with stored object keys
// replaced by retrievable URLs. The stored layers keep bare keys.
func (s *MediaService) ResolvePhotoURLs(layers []*models.Layer) []*models.Layer {
	out := make([]*models.Layer, len(layers))
	for i, l := range layers {
		cp := *l
		cp.Photos = make([]string, len(l.Photos))
		for j, key := range l.Photos {
			cp.Photos[j] = s.PublicURL(key)
		}
		out[i] = &cp
	}
	return out
}
