package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"math"
	"net/http"
	"os"
	"path"
	"sync"
	"time"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/request"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/joho/godotenv"

	"github.com/netisu/prism/glow"
)

// --- Constants ---
const (
	Scale         = 2
	Dimensions    = 512
	MaxDimensions = 1024
	DefaultFrames = 8
	MaxFrames     = 36
	RenderWorkers = 0 // 0 lets the passes size themselves to the host
	RenderTimeout = 20 * time.Second
	UploadTimeout = 10 * time.Second
)

type RenderEvent struct {
	Hash       string      `json:"Hash"`
	RenderJson SceneConfig `json:"RenderJson"`
}

type TurntableEvent struct {
	Hash       string          `json:"Hash"`
	RenderJson TurntableConfig `json:"RenderJson"`
}

// SceneConfig selects a preset scene and poses the camera and light for
// one frame. Zero values keep the preset defaults; Light is a pointer so
// that an absent field keeps the scene's own light.
type SceneConfig struct {
	Scene string      `json:"scene"`
	Angle float64     `json:"angle"`
	Light *[3]float64 `json:"light"`
	Yaw   float64     `json:"yaw"`
	Pitch float64     `json:"pitch"`
	Zoom  float64     `json:"zoom"`
	Size  int         `json:"size"`
}

type TurntableConfig struct {
	SceneConfig
	Frames int `json:"frames"`
}

type Config struct {
	PostKey       string
	ServerAddress string
	S3AccessKey   string
	S3SecretKey   string
	S3Endpoint    string
	S3Region      string
	S3Bucket      string
	CDNURL        string
	RootDir       string
}

// FragmentCache keeps finished geometry passes keyed by everything that
// shapes them: scene, angle, camera pose, and resolution. The light is not
// part of the key, so a request that only moves the light reuses the cached
// pass and pays for shading alone.
type FragmentCache struct {
	mu     sync.RWMutex
	passes map[string]*glow.FragmentBuffer
}

func NewFragmentCache() *FragmentCache {
	return &FragmentCache{passes: make(map[string]*glow.FragmentBuffer)}
}

// GetFragments returns the cached pass for key, running build to fill the
// cache on a miss.
func (c *FragmentCache) GetFragments(key string, build func() *glow.FragmentBuffer) *glow.FragmentBuffer {
	c.mu.RLock()
	frags, ok := c.passes[key]
	c.mu.RUnlock()
	if ok {
		return frags
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	// Double check after acquiring lock
	if frags, ok = c.passes[key]; ok {
		return frags
	}

	frags = build()
	c.passes[key] = frags
	return frags
}

// objectPutter is the slice of the S3 client the server uses.
type objectPutter interface {
	PutObjectWithContext(ctx aws.Context, input *s3.PutObjectInput, opts ...request.Option) (*s3.PutObjectOutput, error)
}

// Holds shared dependencies like config, S3 client, and the pass cache.
type Server struct {
	config     *Config
	s3Uploader objectPutter
	frags      *FragmentCache
}

// Helper to get environment variables with a default value.
func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

// Initializes everything once.
func main() {
	rootDir := getEnv("PRISM_ROOT_DIR", "/var/www/prism")
	_ = godotenv.Load(path.Join(rootDir, ".env"))

	cfg := &Config{
		PostKey:       os.Getenv("POST_KEY"),
		ServerAddress: os.Getenv("SERVER_ADDRESS"),
		S3AccessKey:   os.Getenv("S3_ACCESS_KEY"),
		S3SecretKey:   os.Getenv("S3_SECRET_KEY"),
		S3Endpoint:    os.Getenv("S3_ENDPOINT"),
		S3Region:      os.Getenv("S3_REGION"),
		S3Bucket:      os.Getenv("S3_BUCKET"),
		CDNURL:        os.Getenv("CDN_URL"),
		RootDir:       rootDir,
	}

	s3Config := &aws.Config{
		Credentials:      credentials.NewStaticCredentials(cfg.S3AccessKey, cfg.S3SecretKey, ""),
		Endpoint:         aws.String(cfg.S3Endpoint),
		Region:           aws.String(cfg.S3Region),
		S3ForcePathStyle: aws.Bool(true),
	}
	sess, err := session.NewSession(s3Config)
	if err != nil {
		log.Fatalf("Failed to create S3 session: %v", err)
	}

	server := &Server{
		config:     cfg,
		s3Uploader: s3.New(sess),
		frags:      NewFragmentCache(),
	}

	http.HandleFunc("/", server.handleRender)

	fmt.Printf("Starting server on %s\n", cfg.ServerAddress)
	if err := http.ListenAndServe(cfg.ServerAddress, nil); err != nil {
		log.Fatalf("HTTP server error: %v", err)
	}
}

// RenderRequestType identifies the job before the full body is decoded.
type RenderRequestType struct {
	RenderType string `json:"RenderType"`
}

// Central HTTP handler.
func (s *Server) handleRender(w http.ResponseWriter, r *http.Request) {
	if s.config.PostKey != "" && r.Header.Get("Prism-Access-Key") != s.config.PostKey {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}
	if r.Method != http.MethodPost {
		http.Error(w, "Method Not Allowed", http.StatusMethodNotAllowed)
		return
	}

	body, err := io.ReadAll(r.Body)
	if err != nil {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}
	defer r.Body.Close()

	// Peek at the RenderType
	var reqType RenderRequestType
	if err := json.Unmarshal(body, &reqType); err != nil {
		http.Error(w, "Invalid JSON", http.StatusBadRequest)
		return
	}

	log.Printf("Received RenderType: %s", reqType.RenderType)

	switch reqType.RenderType {
	case "scene":
		var e RenderEvent
		if err := json.Unmarshal(body, &e); err != nil {
			http.Error(w, "Invalid scene render body", http.StatusBadRequest)
			return
		}
		s.handleSceneRender(w, r, e)
	case "turntable":
		var e TurntableEvent
		if err := json.Unmarshal(body, &e); err != nil {
			http.Error(w, "Invalid turntable render body", http.StatusBadRequest)
			return
		}
		s.handleTurntableRender(w, e)
	default:
		http.Error(w, "Unknown RenderType", http.StatusBadRequest)
	}
}

func (s *Server) runRenderWithTimeout(cfg SceneConfig) ([]byte, error) {
	ctx, cancel := context.WithTimeout(context.Background(), RenderTimeout)
	defer cancel()

	type result struct {
		data []byte
		err  error
	}
	resChan := make(chan result, 1)

	go func() {
		defer func() {
			if r := recover(); r != nil {
				resChan <- result{nil, fmt.Errorf("panic in renderer: %v", r)}
			}
		}()

		data, err := s.renderToBuffer(cfg)
		resChan <- result{data: data, err: err}
	}()

	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("render timeout")
	case res := <-resChan:
		return res.data, res.err
	}
}

func (s *Server) handleSceneRender(w http.ResponseWriter, r *http.Request, e RenderEvent) {
	start := time.Now()

	if _, ok := glow.SceneByName(e.RenderJson.Scene, 0); !ok {
		http.Error(w, "Unknown scene", http.StatusBadRequest)
		return
	}

	buf, err := s.runRenderWithTimeout(e.RenderJson)
	if err != nil {
		log.Printf("Scene render failed: %v", err)
		http.Error(w, "Render failed", http.StatusGatewayTimeout)
		return
	}

	outputKey := path.Join("renders", e.Hash+".png")
	if err := s.uploadToS3(r.Context(), buf, outputKey); err != nil {
		log.Printf("Scene upload failed: %v", err)
		http.Error(w, "Upload failed", http.StatusInternalServerError)
		return
	}

	log.Printf("Scene render %s finished in %v", e.Hash, time.Since(start))
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"url": s.config.CDNURL + "/" + outputKey})
}

// handleTurntableRender renders frames evenly spaced over a full spin of the
// scene. Frames render concurrently; each one is an independent job with its
// own timeout, and a failed frame is logged and skipped rather than failing
// the batch.
func (s *Server) handleTurntableRender(w http.ResponseWriter, e TurntableEvent) {
	start := time.Now()

	if _, ok := glow.SceneByName(e.RenderJson.Scene, 0); !ok {
		http.Error(w, "Unknown scene", http.StatusBadRequest)
		return
	}

	frames := e.RenderJson.Frames
	if frames <= 0 {
		frames = DefaultFrames
	}
	if frames > MaxFrames {
		frames = MaxFrames
	}

	var wg sync.WaitGroup
	wg.Add(frames)
	for i := 0; i < frames; i++ {
		go func(frame int) {
			defer wg.Done()

			cfg := e.RenderJson.SceneConfig
			cfg.Angle = 2 * math.Pi * float64(frame) / float64(frames)

			buf, err := s.runRenderWithTimeout(cfg)
			if err != nil {
				log.Printf("Turntable frame %d failed: %v", frame, err)
				return
			}
			key := path.Join("renders", fmt.Sprintf("%s_%d.png", e.Hash, frame))
			if err := s.uploadToS3(context.Background(), buf, key); err != nil {
				log.Printf("Turntable frame %d upload failed: %v", frame, err)
			}
		}(i)
	}
	wg.Wait()

	log.Printf("Completed turntable render for %s (%d frames) in %v", e.Hash, frames, time.Since(start))
	w.WriteHeader(http.StatusOK)
	fmt.Fprintf(w, "Turntable processed, %d frames.\n", frames)
}

// renderToBuffer runs the two passes and encodes the frame. The geometry
// pass comes from the cache when an identical one already ran; the shading
// pass always runs against the request's light.
func (s *Server) renderToBuffer(cfg SceneConfig) ([]byte, error) {
	scene, ok := glow.SceneByName(cfg.Scene, cfg.Angle)
	if !ok {
		return nil, fmt.Errorf("unknown scene %q", cfg.Scene)
	}
	if cfg.Light != nil {
		scene.LightPosition = mgl64.Vec3{cfg.Light[0], cfg.Light[1], cfg.Light[2]}
	}

	camera := glow.NewCamera()
	camera.Orbit(cfg.Yaw, cfg.Pitch)
	if cfg.Zoom != 0 {
		camera.SetZoom(cfg.Zoom)
	}

	size := cfg.Size
	if size <= 0 {
		size = Dimensions
	}
	if size > MaxDimensions {
		size = MaxDimensions
	}
	dim := size * Scale

	frags := s.frags.GetFragments(fragmentKey(cfg, dim), func() *glow.FragmentBuffer {
		return glow.GeometryPass(scene, camera, dim, dim, RenderWorkers)
	})

	img := glow.RenderFragments(frags, scene, size, RenderWorkers)

	var buf bytes.Buffer
	if err := glow.Encode(&buf, img, "png"); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// fragmentKey identifies a geometry pass. The light is deliberately left
// out of the key: it only affects shading.
func fragmentKey(cfg SceneConfig, dim int) string {
	return fmt.Sprintf("%s/%g/%g/%g/%g/%d", cfg.Scene, cfg.Angle, cfg.Yaw, cfg.Pitch, cfg.Zoom, dim)
}

func (s *Server) uploadToS3(ctx context.Context, data []byte, key string) error {
	ctx, cancel := context.WithTimeout(ctx, UploadTimeout)
	defer cancel()

	size := int64(len(data))
	_, err := s.s3Uploader.PutObjectWithContext(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(s.config.S3Bucket),
		Key:           aws.String(key),
		Body:          bytes.NewReader(data),
		ContentLength: aws.Int64(size),
		ContentType:   aws.String("image/png"),
		ACL:           aws.String("public-read"),
	})

	if err != nil {
		return fmt.Errorf("failed to upload %s: %w", key, err)
	}

	log.Printf("Uploaded %s to S3 (%d bytes)", key, size)
	return nil
}
