package extractor

import (
	"context"
	"fmt"
	"image"
	"image/color"
	"os"
	"path/filepath"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/ivlev/logoextract/internal/analyzer"
	"github.com/ivlev/logoextract/internal/config"
	"github.com/ivlev/logoextract/internal/grouper"
	"github.com/ivlev/logoextract/internal/manifest"
	"github.com/ivlev/logoextract/internal/source"
	"github.com/ivlev/logoextract/internal/system"
)

type Project struct {
	Config   *config.Config
	Source   source.Source
	Detector analyzer.Detector
	Grouper  *grouper.Grouper
}

// Result содержит итог запуска по всем страницам источника.
type Result struct {
	Files      []string
	TotalBytes int64
	Manifest   *manifest.Manifest
	Timings    Timings
}

type Timings struct {
	Decode, Detect, Group, Save time.Duration
	Total                       time.Duration
}

func NewProject(cfg *config.Config, src source.Source) (*Project, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	det, err := analyzer.NewDetector(cfg.Detector)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", config.ErrInvalidConfiguration, err)
	}
	if alpha, ok := det.(*analyzer.AlphaDetector); ok {
		if err := configureAlpha(alpha, cfg, src.Opaque()); err != nil {
			return nil, err
		}
	}

	grp := grouper.NewGrouper()
	grp.HorizontalGap = cfg.HorizontalGap
	grp.VerticalGap = cfg.VerticalGap
	grp.Padding = cfg.Padding

	return &Project{
		Config:   cfg,
		Source:   src,
		Detector: det,
		Grouper:  grp,
	}, nil
}

func configureAlpha(det *analyzer.AlphaDetector, cfg *config.Config, opaque bool) error {
	det.AlphaThreshold = cfg.AlphaThreshold
	det.MinElementSize = cfg.MinElementSize
	det.Connectivity = cfg.Connectivity

	keyName := cfg.KeyColor
	if keyName == "" && opaque {
		// У отрендеренных страниц нет прозрачности: фоном считаем белый
		keyName = "white"
	}
	if keyName == "" || keyName == "none" {
		return nil
	}
	key, err := analyzer.ParseKeyColor(keyName)
	if err != nil {
		return fmt.Errorf("%w: %v", config.ErrInvalidConfiguration, err)
	}
	det.KeyColor = &key
	det.KeyTolerance = cfg.KeyTolerance
	return nil
}

func (p *Project) Run(ctx context.Context) (*Result, error) {
	startTime := time.Now()

	pageCount := p.Source.PageCount()
	if pageCount == 0 {
		return nil, fmt.Errorf("%w: источник не содержит изображений", source.ErrImageLoad)
	}

	if err := os.MkdirAll(p.Config.OutputDir, 0755); err != nil {
		return nil, fmt.Errorf("ошибка создания папки %s: %w", p.Config.OutputDir, err)
	}

	fmt.Printf("[*] Источник: %s | Страниц: %d", p.Config.InputPath, pageCount)
	if w, h, err := p.Source.GetPageDimensions(0); err == nil {
		fmt.Printf(" | Первая страница: %dx%d", w, h)
	}
	fmt.Println()

	res := &Result{
		Manifest: &manifest.Manifest{
			Version:  "1.0",
			Source:   p.Config.InputPath,
			Settings: p.settings(),
		},
	}

	for i := 0; i < pageCount; i++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		page, err := p.processPage(ctx, i, res)
		if err != nil {
			return nil, err
		}
		res.Manifest.Pages = append(res.Manifest.Pages, *page)
	}

	if p.Config.WriteManifest {
		path := filepath.Join(p.Config.OutputDir, manifest.FileName)
		if err := manifest.Write(res.Manifest, path); err != nil {
			return nil, fmt.Errorf("ошибка записи манифеста: %w", err)
		}
	}

	res.Timings.Total = time.Since(startTime)
	if p.Config.ShowStats {
		p.report(res, pageCount)
	}

	return res, nil
}

func (p *Project) processPage(ctx context.Context, index int, res *Result) (*manifest.Page, error) {
	name := p.Source.PageName(index)

	t := time.Now()
	img, err := p.Source.RenderPage(index, p.Config.DPI)
	if err != nil {
		return nil, err
	}
	rgba, release := p.toRGBA(img)
	defer release()
	res.Timings.Decode += time.Since(t)

	w, h := rgba.Rect.Dx(), rgba.Rect.Dy()
	fmt.Printf("\n[*] Анализ: %s (%dx%d)\n", name, w, h)

	t = time.Now()
	elements, err := p.Detector.Detect(rgba)
	if err != nil {
		return nil, fmt.Errorf("ошибка анализа %s: %w", name, err)
	}
	res.Timings.Detect += time.Since(t)
	fmt.Printf("[*] Элементов после фильтрации: %d\n", len(elements))

	t = time.Now()
	regions, err := p.Grouper.Group(elements, w, h)
	if err != nil {
		return nil, fmt.Errorf("ошибка группировки %s: %w", name, err)
	}
	res.Timings.Group += time.Since(t)
	fmt.Printf("[*] Сгруппировано в %d логотипов (h_gap=%dpx, v_gap=%dpx)\n",
		len(regions), p.Grouper.HorizontalGap, p.Grouper.VerticalGap)

	page := &manifest.Page{
		Name:     name,
		Width:    w,
		Height:   h,
		Elements: len(elements),
		Regions:  []manifest.Region{},
	}
	if len(regions) == 0 {
		return page, nil
	}

	t = time.Now()
	saved, err := p.saveRegions(ctx, rgba, name, regions)
	if err != nil {
		return nil, err
	}
	res.Timings.Save += time.Since(t)

	for i, r := range saved {
		page.Regions = append(page.Regions, r)
		res.Files = append(res.Files, filepath.Join(p.Config.OutputDir, r.File))
		res.TotalBytes += r.Bytes

		if !p.Config.Quiet {
			fmt.Printf("   [>] Logo %d: %s (%dx%dpx, %d elements) - %.1f KB\n",
				i+1, r.File, r.Box.W, r.Box.H, r.Elements, float64(r.Bytes)/1024)
		}
	}

	return page, nil
}

// saveRegions сохраняет вырезки параллельно; порядок результата совпадает с regions.
func (p *Project) saveRegions(ctx context.Context, img *image.RGBA, name string, regions []grouper.LogoRegion) ([]manifest.Region, error) {
	saved := make([]manifest.Region, len(regions))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(p.Config.Workers)

	for i, r := range regions {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			file := RegionFileName(name, i)
			size, err := SaveCrop(img, r.Box, filepath.Join(p.Config.OutputDir, file))
			if err != nil {
				return fmt.Errorf("ошибка сохранения %s: %w", file, err)
			}
			saved[i] = manifest.Region{
				File:     file,
				Box:      manifest.FromRect(r.Box),
				Raw:      manifest.FromRect(r.Raw),
				Elements: r.Elements,
				Bytes:    size,
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return saved, nil
}

// toRGBA приводит страницу к RGBA, по возможности через пул буферов.
func (p *Project) toRGBA(img image.Image) (*image.RGBA, func()) {
	if rgba, ok := img.(*image.RGBA); ok && rgba.Rect.Min == (image.Point{}) {
		return rgba, func() {}
	}
	b := img.Bounds()
	rgba := system.GetImage(image.Rect(0, 0, b.Dx(), b.Dy()))
	analyzer.DrawRGBA(rgba, img)
	return rgba, func() { system.PutImage(rgba) }
}

func (p *Project) settings() manifest.Settings {
	s := manifest.Settings{
		HorizontalGap: p.Grouper.HorizontalGap,
		VerticalGap:   p.Grouper.VerticalGap,
		Padding:       p.Grouper.Padding,
	}
	if det, ok := p.Detector.(*analyzer.AlphaDetector); ok {
		s.AlphaThreshold = det.AlphaThreshold
		s.MinElementSize = det.MinElementSize
		s.Connectivity = det.Connectivity
		if det.KeyColor != nil {
			s.KeyColor = hexColor(*det.KeyColor)
		}
	}
	return s
}

func hexColor(c color.RGBA) string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}

func (p *Project) report(res *Result, pageCount int) {
	t := res.Timings
	pool := system.GlobalPoolStats()
	memLine := "n/a"
	if stats, err := system.ReadMemoryStats(); err == nil {
		memLine = stats.String()
	} else {
		fmt.Printf("[!] Не удалось получить статистику памяти: %v\n", err)
	}

	fmt.Printf(
		"--- [PERFORMANCE REPORT] ---\n"+
			"Build: %s\n"+
			"Total Time: %.3fs\n"+
			"Decode: %.3fs\n"+
			"Detect: %.3fs\n"+
			"Group: %.3fs\n"+
			"Save: %.3fs\n"+
			"Memory: %s\n"+
			"Buffers: %d reused / %d allocated\n"+
			"----------------------------\n",
		p.Config.BuildVersion, t.Total.Seconds(), t.Decode.Seconds(), t.Detect.Seconds(),
		t.Group.Seconds(), t.Save.Seconds(), memLine, pool.Hits, pool.Misses,
	)

	// Логирование в файл
	logEntry := fmt.Sprintf("[%s] Build: %s | Input: %s | Pages: %d | Logos: %d | Total: %.3fs | Detect: %.3fs | Group: %.3fs | %s\n",
		time.Now().Format("2006-01-02 15:04:05"),
		p.Config.BuildVersion,
		filepath.Base(p.Config.InputPath),
		pageCount,
		len(res.Files),
		t.Total.Seconds(),
		t.Detect.Seconds(),
		t.Group.Seconds(),
		memLine,
	)

	f, err := os.OpenFile("benchmark.log", os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err == nil {
		f.WriteString(logEntry)
		f.Close()
	} else {
		fmt.Printf("[!] Не удалось записать benchmark.log: %v\n", err)
	}
}
