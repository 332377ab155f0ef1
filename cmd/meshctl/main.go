package main

import (
	"flag"
	"fmt"
	"io"
	"log"
	"math/rand"
	"os"
	"path/filepath"
	"strings"
	"text/tabwriter"

	"github.com/annel0/voxel-mesher/internal/chunk"
	"github.com/annel0/voxel-mesher/internal/config"
	"github.com/annel0/voxel-mesher/internal/export"
	"github.com/annel0/voxel-mesher/internal/logging"
	"github.com/annel0/voxel-mesher/internal/mesh"
	"github.com/annel0/voxel-mesher/internal/terrain"
	"github.com/annel0/voxel-mesher/internal/voxel"
)

func main() {
	if err := run(os.Args[1:], os.Stdout); err != nil {
		log.Fatalf("❌ %v", err)
	}
}

type options struct {
	configPath string
	method     string
	chunkCoord string
	size       int
	seed       int64
	random     float64
	types      int
	verify     bool
	out        string
	verbose    bool
}

func parseFlags(args []string) (*options, error) {
	fs := flag.NewFlagSet("meshctl", flag.ContinueOnError)

	opts := &options{}
	fs.StringVar(&opts.configPath, "config", "", "YAML конфигурация с параметрами ландшафта")
	fs.StringVar(&opts.method, "method", "all", "Стратегия: all, naive, culled, greedy (lazy, runs)")
	fs.StringVar(&opts.chunkCoord, "chunk", "0,0", "Координата чанка x,z")
	fs.IntVar(&opts.size, "size", voxel.ChunkSize, "Размер сетки")
	fs.Int64Var(&opts.seed, "seed", 0, "Сид (0: из конфигурации)")
	fs.Float64Var(&opts.random, "random", 0, "Случайное заполнение с плотностью (0..1) вместо ландшафта")
	fs.IntVar(&opts.types, "types", 1, "Число типов вокселей при случайном заполнении")
	fs.BoolVar(&opts.verify, "verify", false, "Проверить эквивалентность поверхностей всех стратегий")
	fs.StringVar(&opts.out, "out", "", "Записать меш в файл .gltf или .glb")
	fs.BoolVar(&opts.verbose, "v", false, "Подробное логирование")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if opts.size < 1 || opts.size > 255 {
		return nil, fmt.Errorf("размер сетки должен быть от 1 до 255, получено %d", opts.size)
	}
	if opts.random < 0 || opts.random > 1 {
		return nil, fmt.Errorf("плотность должна быть в [0, 1], получено %v", opts.random)
	}
	if opts.types < 1 || opts.types > 255 {
		return nil, fmt.Errorf("число типов должно быть от 1 до 255, получено %d", opts.types)
	}
	return opts, nil
}

func run(args []string, stdout io.Writer) error {
	opts, err := parseFlags(args)
	if err != nil {
		return err
	}

	level := "warn"
	if opts.verbose {
		level = "debug"
	}
	if err := logging.InitWithFileConfig(level, logging.FileConfig{}, true); err != nil {
		return err
	}
	defer logging.Sync()

	coord, err := chunk.ParseCoord(opts.chunkCoord)
	if err != nil {
		return err
	}

	meshers, err := selectMeshers(opts.method)
	if err != nil {
		return err
	}

	grid, source, err := buildGrid(opts, coord)
	if err != nil {
		return err
	}
	fmt.Fprintf(stdout, "Сетка %d³ (%s), чанк %s: %d твёрдых вокселей\n\n", grid.Size(), source, coord, grid.SolidCount())

	tw := tabwriter.NewWriter(stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "метод\tвершин\tтреугольников\tквадов\tвремя")

	var last *mesh.Mesh
	for _, m := range meshers {
		built, stats := mesh.Build(m, grid)
		logging.Debug("%s: %d вершин, %d треугольников за %s", stats.Method, stats.Vertices, stats.Triangles, stats.Duration)
		fmt.Fprintf(tw, "%s\t%d\t%d\t%d\t%s\n", stats.Method, stats.Vertices, stats.Triangles, stats.Quads, stats.Duration)
		last = built
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	if opts.verify {
		report := mesh.Verify(grid)
		if !report.OK() {
			for _, p := range report.Problems {
				fmt.Fprintf(stdout, "✗ %s\n", p)
			}
			return fmt.Errorf("проверка не пройдена: %d проблем", len(report.Problems))
		}
		fmt.Fprintln(stdout, "\n✓ поверхности naive (без внутренних граней), culled и greedy совпадают; сжатие монотонно")
	}

	if opts.out != "" {
		if err := writeMesh(opts.out, coord, grid.Size(), last); err != nil {
			return err
		}
		fmt.Fprintf(stdout, "\nМеш %s записан в %s\n", meshers[len(meshers)-1].Method(), opts.out)
	}
	return nil
}

// selectMeshers возвращает стратегии; при "all" последней идёт greedy, её меш и экспортируется
func selectMeshers(name string) ([]mesh.Mesher, error) {
	if strings.EqualFold(strings.TrimSpace(name), "all") {
		out := make([]mesh.Mesher, 0, len(mesh.Methods))
		for _, m := range mesh.Methods {
			mesher, err := mesh.New(m)
			if err != nil {
				return nil, err
			}
			out = append(out, mesher)
		}
		return out, nil
	}

	method, err := mesh.ParseMethod(name)
	if err != nil {
		return nil, err
	}
	mesher, err := mesh.New(method)
	if err != nil {
		return nil, err
	}
	return []mesh.Mesher{mesher}, nil
}

func buildGrid(opts *options, coord chunk.Coord) (*voxel.Grid, string, error) {
	cfg, err := config.Load(opts.configPath)
	if err != nil {
		return nil, "", err
	}
	params := cfg.Terrain
	if opts.seed != 0 {
		params.Seed = opts.seed
	}

	if opts.random > 0 {
		rng := rand.New(rand.NewSource(params.Seed + int64(coord.X)*73856093 + int64(coord.Z)*19349663))
		grid := voxel.NewGrid(opts.size)
		n := grid.Size()
		for x := 0; x < n; x++ {
			for y := 0; y < n; y++ {
				for z := 0; z < n; z++ {
					if rng.Float64() < opts.random {
						grid.Set(x, y, z, voxel.Solid(uint8(1+rng.Intn(opts.types))))
					}
				}
			}
		}
		return grid, fmt.Sprintf("случайная, плотность %.2f", opts.random), nil
	}

	gen, err := terrain.NewGeneratorSized(params, opts.size)
	if err != nil {
		return nil, "", err
	}
	return gen.Generate(coord.X, coord.Z), "ландшафт " + params.Fingerprint(), nil
}

func writeMesh(path string, coord chunk.Coord, size int, m *mesh.Mesh) error {
	binary := strings.EqualFold(filepath.Ext(path), ".glb")

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("создание %s: %w", path, err)
	}

	item := export.Item{Name: "chunk" + coord.String(), Mesh: m, Offset: coord.Origin(size)}
	if err := export.WriteGLTF(f, []export.Item{item}, binary); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
