package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"time"

	config "price-dashboard-api/configs"
	"price-dashboard-api/pkg/client"
	"price-dashboard-api/pkg/models"

	"github.com/joho/godotenv"
)

const usage = `使い方: pricectl [-base-url URL] [-timeout 30s] <command> [args]

commands:
  products              商品一覧
  product <id>          商品を1件取得
  stats <id>            商品別の統計情報
  valid-values          ドロップダウン用の有効値
  optimize <file|->     価格最適化（JSONファイルまたは標準入力）
  simulate <file|->     価格シミュレーション（JSONファイルまたは標準入力）
  analytics             分析サマリー
  health                バックエンドのヘルスチェック
`

var errUsage = errors.New("invalid usage")

func main() {
	// .envファイルを読み込み（無ければ環境変数のみ）
	_ = godotenv.Load()

	os.Exit(run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}

func run(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	cfg := config.LoadConfig()

	fs := flag.NewFlagSet("pricectl", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.Usage = func() { fmt.Fprint(stderr, usage) }
	baseURL := fs.String("base-url", cfg.APIBaseURL, "価格最適化バックエンドのURL")
	timeout := fs.Duration("timeout", cfg.RequestTimeout, "リクエストのタイムアウト")
	if err := fs.Parse(args); err != nil {
		return 2
	}

	apiClient := client.NewAPIClient(*baseURL,
		client.WithTimeout(*timeout),
		client.WithLogger(log.New(stderr, "", log.LstdFlags)),
	)

	ctx, cancel := context.WithTimeout(context.Background(), *timeout+5*time.Second)
	defer cancel()

	result, err := dispatch(ctx, apiClient, fs.Args(), stdin)
	if errors.Is(err, errUsage) {
		fmt.Fprint(stderr, usage)
		return 2
	}
	if err != nil {
		fmt.Fprintf(stderr, "エラー: %v\n", err)
		return 1
	}

	enc := json.NewEncoder(stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(result); err != nil {
		fmt.Fprintf(stderr, "エラー: 出力に失敗: %v\n", err)
		return 1
	}
	return 0
}

func dispatch(ctx context.Context, c *client.APIClient, args []string, stdin io.Reader) (models.Payload, error) {
	if len(args) == 0 {
		return nil, errUsage
	}

	command, rest := args[0], args[1:]
	switch command {
	case "products":
		return c.FetchProducts(ctx)
	case "product", "stats":
		if len(rest) != 1 {
			return nil, errUsage
		}
		if command == "stats" {
			return c.FetchProductStats(ctx, rest[0])
		}
		return c.FetchProduct(ctx, rest[0])
	case "valid-values":
		return c.GetValidValues(ctx)
	case "optimize", "simulate":
		if len(rest) != 1 {
			return nil, errUsage
		}
		body, err := readJSONInput(rest[0], stdin)
		if err != nil {
			return nil, err
		}
		if command == "simulate" {
			if _, err := models.Decode[models.SimulationRequest](body); err != nil {
				return nil, fmt.Errorf("入力の形式が不正です: %w", err)
			}
			return c.SimulatePrice(ctx, body)
		}
		if _, err := models.Decode[models.PriceOptimizationRequest](body); err != nil {
			return nil, fmt.Errorf("入力の形式が不正です: %w", err)
		}
		return c.OptimizePrice(ctx, body)
	case "analytics":
		return c.GetAnalyticsSummary(ctx)
	case "health":
		return c.CheckHealth(ctx)
	default:
		return nil, errUsage
	}
}

// readJSONInput "-"の場合は標準入力から読み込みます。
func readJSONInput(name string, stdin io.Reader) (models.Payload, error) {
	var data []byte
	var err error
	if name == "-" {
		data, err = io.ReadAll(stdin)
	} else {
		data, err = os.ReadFile(name)
	}
	if err != nil {
		return nil, fmt.Errorf("入力の読み込みに失敗: %w", err)
	}

	var body models.Payload
	if err := json.Unmarshal(data, &body); err != nil {
		return nil, fmt.Errorf("入力のJSON解析に失敗: %w", err)
	}
	return body, nil
}
