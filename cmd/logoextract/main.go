package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/ivlev/logoextract/internal/config"
	"github.com/ivlev/logoextract/internal/extractor"
	"github.com/ivlev/logoextract/internal/source"
	"github.com/ivlev/logoextract/internal/system"
)

var buildVersion = "dev"

func main() {
	cfg, err := parseArgs(flag.CommandLine, os.Args[1:])
	if err != nil {
		log.Fatalf("[-] Ошибка: %v", err)
	}
	cfg.BuildVersion = buildVersion

	if cfg.InputPath == "" {
		os.MkdirAll("input", 0755)
		latest, err := system.FindLatest("input", func(name string) bool {
			return source.IsImage(name) || source.IsPDF(name)
		})
		if err != nil {
			log.Fatalf("[-] Ошибка: %v. Положите изображение или PDF в input/", err)
		}
		cfg.InputPath = latest
		fmt.Printf("[*] Выбран файл: %s\n", cfg.InputPath)
	}

	if _, err := os.Stat(cfg.InputPath); err != nil {
		log.Fatalf("[-] Ошибка: файл '%s' не найден", cfg.InputPath)
	}

	if cfg.OutputDir == "" {
		cfg.OutputDir = defaultOutputDir(cfg.InputPath)
	}

	if err := cfg.Validate(); err != nil {
		log.Fatalf("[-] Ошибка: %v", err)
	}

	src, err := source.Open(cfg.InputPath)
	if err != nil {
		log.Fatalf("[-] Ошибка инициализации источника: %v", err)
	}
	defer src.Close()

	fmt.Printf("[*] Папка результата: %s\n", cfg.OutputDir)
	fmt.Printf("[*] Настройки: h_gap=%dpx, v_gap=%dpx, padding=%dpx\n", cfg.HorizontalGap, cfg.VerticalGap, cfg.Padding)

	project, err := extractor.NewProject(cfg, src)
	if err != nil {
		log.Fatalf("[-] Ошибка: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	res, err := project.Run(ctx)
	if err != nil {
		if errors.Is(err, source.ErrImageLoad) {
			log.Fatalf("[-] Ошибка загрузки изображения: %v", err)
		}
		log.Fatalf("[-] Ошибка: %v", err)
	}

	printSummary(cfg, res)
}

// parseArgs собирает конфигурацию: значения по умолчанию, затем -config,
// затем явно заданные флаги и позиционные аргументы.
// Флаги допускаются и после позиционных: logoextract logo.png ./logos -h-gap=150
func parseArgs(fs *flag.FlagSet, args []string) (*config.Config, error) {
	defaults := config.Default()

	configPtr := fs.String("config", "", "Путь к YAML-конфигурации (флаги имеют приоритет)")
	inputPtr := fs.String("input", "", "Изображение, папка с изображениями или PDF (по умолчанию: самый свежий файл в input/)")
	outputPtr := fs.String("output", "", "Папка для логотипов (по умолчанию: <имя>_complete_logos)")
	detectorPtr := fs.String("detector", defaults.Detector, "Детектор элементов: alpha")
	hGapPtr := fs.Int("h-gap", defaults.HorizontalGap, "Максимальный горизонтальный зазор для объединения элементов (px)")
	vGapPtr := fs.Int("v-gap", defaults.VerticalGap, "Максимальный вертикальный зазор для объединения элементов (px)")
	paddingPtr := fs.Int("padding", defaults.Padding, "Отступ вокруг каждого логотипа (px)")
	alphaPtr := fs.Int("alpha-threshold", defaults.AlphaThreshold, "Порог альфа-канала: пиксель непрозрачен, если alpha > порога (0-255)")
	minSizePtr := fs.Int("min-size", defaults.MinElementSize, "Минимальная ширина и высота элемента (px)")
	connPtr := fs.Int("connectivity", defaults.Connectivity, "Связность пикселей: 4 или 8")
	keyPtr := fs.String("key-color", "", "Цвет фона для непрозрачных источников: white, black, #rrggbb, none (для PDF по умолчанию white)")
	keyTolPtr := fs.Int("key-tolerance", defaults.KeyTolerance, "Допуск по каналу для цвета фона (0-255)")
	dpiPtr := fs.Int("dpi", defaults.DPI, "DPI для рендеринга PDF")
	workersPtr := fs.Int("workers", runtime.NumCPU(), "Потоки сохранения")
	manifestPtr := fs.Bool("manifest", defaults.WriteManifest, "Записать manifest.yaml в папку результата")
	statsPtr := fs.Bool("stats", false, "Показать статистику производительности")
	quietPtr := fs.Bool("quiet", false, "Не печатать строку для каждого логотипа")

	// flag останавливается на первом позиционном аргументе: разбираем остаток заново
	var positional []string
	for {
		if err := fs.Parse(args); err != nil {
			return nil, err
		}
		rest := fs.Args()
		if len(rest) == 0 {
			break
		}
		positional = append(positional, rest[0])
		args = rest[1:]
	}

	cfg := defaults
	if *configPtr != "" {
		loaded, err := config.Load(*configPtr)
		if err != nil {
			return nil, err
		}
		cfg = loaded
		fmt.Printf("[*] Конфигурация: %s\n", *configPtr)
	}

	// Явно заданные флаги перекрывают файл конфигурации
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "input":
			cfg.InputPath = *inputPtr
		case "output":
			cfg.OutputDir = *outputPtr
		case "detector":
			cfg.Detector = *detectorPtr
		case "h-gap":
			cfg.HorizontalGap = *hGapPtr
		case "v-gap":
			cfg.VerticalGap = *vGapPtr
		case "padding":
			cfg.Padding = *paddingPtr
		case "alpha-threshold":
			cfg.AlphaThreshold = *alphaPtr
		case "min-size":
			cfg.MinElementSize = *minSizePtr
		case "connectivity":
			cfg.Connectivity = *connPtr
		case "key-color":
			cfg.KeyColor = *keyPtr
		case "key-tolerance":
			cfg.KeyTolerance = *keyTolPtr
		case "dpi":
			cfg.DPI = *dpiPtr
		case "workers":
			cfg.Workers = *workersPtr
		case "manifest":
			cfg.WriteManifest = *manifestPtr
		case "stats":
			cfg.ShowStats = *statsPtr
		case "quiet":
			cfg.Quiet = *quietPtr
		}
	})

	// Позиционные аргументы: logoextract logo_composite.png [output_dir]
	if len(positional) > 0 && cfg.InputPath == "" {
		cfg.InputPath = positional[0]
		positional = positional[1:]
	}
	if len(positional) > 0 && cfg.OutputDir == "" {
		cfg.OutputDir = positional[0]
		positional = positional[1:]
	}
	if len(positional) > 0 {
		return nil, fmt.Errorf("%w: лишние аргументы %q", config.ErrInvalidConfiguration, positional)
	}

	return cfg, nil
}

func defaultOutputDir(inputPath string) string {
	name := strings.ReplaceAll(source.Stem(inputPath), " ", "_")
	return fmt.Sprintf("%s_complete_logos", name)
}

func printSummary(cfg *config.Config, res *extractor.Result) {
	line := strings.Repeat("=", 60)
	fmt.Println("\n" + line)
	fmt.Println("[+++] Извлечение завершено!")
	fmt.Printf("Логотипов извлечено: %d\n", res.Manifest.Count())
	fmt.Printf("Папка результата: %s\n", cfg.OutputDir)
	fmt.Println(line)

	if len(res.Files) == 0 {
		fmt.Println("\n[!] Логотипы не найдены")
		fmt.Println("    Попробуйте изменить -h-gap и -v-gap:")
		fmt.Println("    - увеличьте -h-gap, чтобы объединять элементы, далекие по горизонтали")
		fmt.Println("    - увеличьте -v-gap, чтобы объединять элементы, далекие по вертикали")
		return
	}

	fmt.Printf("\nОбщий размер: %.1f KB\n", float64(res.TotalBytes)/1024)
	fmt.Println("\nФайлы:")
	for _, f := range res.Files {
		fmt.Printf("  • %s\n", filepath.Base(f))
	}
}
