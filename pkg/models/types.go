package models

// Payload はバックエンドから返されたJSONをデコードしたままの値です。
// map[string]interface{}, []interface{}, float64, string, bool, nil のいずれかを保持します。
// スキーマはバックエンド側の責務のため、この層では検証しません。
type Payload = interface{}

// Product 販売商品（価格はAED）
type Product struct {
	ID           string   `json:"id"`
	Name         string   `json:"name"`
	Category     string   `json:"category"`
	CurrentPrice float64  `json:"current_price"`
	Cost         *float64 `json:"cost,omitempty"`
	Unit         string   `json:"unit"`
}

// PriceOptimizationRequest 価格最適化リクエスト
type PriceOptimizationRequest struct {
	ProductID    string   `json:"product_id"`
	ProductName  string   `json:"product_name"`
	Category     string   `json:"category"`
	Emirate      string   `json:"emirate"`
	StoreType    string   `json:"store_type"`
	CurrentPrice float64  `json:"current_price"`
	Month        int      `json:"month"`
	DayOfWeek    int      `json:"day_of_week"`
	DayOfMonth   int      `json:"day_of_month"`
	IsWeekend    int      `json:"is_weekend"`
	IsHoliday    int      `json:"is_holiday"`
	MinPrice     *float64 `json:"min_price,omitempty"`
	MaxPrice     *float64 `json:"max_price,omitempty"`
}

// SimulationRequest 単一価格シナリオのシミュレーションリクエスト
type SimulationRequest struct {
	ProductName string  `json:"product_name"`
	Category    string  `json:"category"`
	Emirate     string  `json:"emirate"`
	StoreType   string  `json:"store_type"`
	Month       int     `json:"month"`
	DayOfWeek   int     `json:"day_of_week"`
	DayOfMonth  int     `json:"day_of_month"`
	IsWeekend   int     `json:"is_weekend"`
	IsHoliday   int     `json:"is_holiday"`
	Price       float64 `json:"price"`
}

// DemandPrediction 需要曲線の1点
type DemandPrediction struct {
	Price           float64 `json:"price"`
	PredictedDemand float64 `json:"predicted_demand"`
	Revenue         float64 `json:"revenue"`
}

// ElasticityData 価格弾力性の分析結果
type ElasticityData struct {
	ElasticityCoefficient float64                `json:"elasticity_coefficient"`
	ElasticityCategory    string                 `json:"elasticity_category"` // elastic, inelastic, unitary
	Interpretation        string                 `json:"interpretation"`
	PriceRange            map[string]interface{} `json:"price_range"`
}

// PriceRecommendation 推奨価格
type PriceRecommendation struct {
	RecommendedPrice      float64 `json:"recommended_price"`
	CurrentPrice          float64 `json:"current_price"`
	PriceChangePercentage float64 `json:"price_change_percentage"`
	ExpectedDemand        float64 `json:"expected_demand"`
	ExpectedRevenue       float64 `json:"expected_revenue"`
	ConfidenceScore       float64 `json:"confidence_score"`
	Reasoning             string  `json:"reasoning"`
}

// OptimizationResponse 価格最適化の結果
type OptimizationResponse struct {
	ProductName    string                 `json:"product_name"`
	Category       string                 `json:"category"`
	Emirate        string                 `json:"emirate"`
	StoreType      string                 `json:"store_type"`
	CurrentMetrics map[string]interface{} `json:"current_metrics"`
	Recommendation PriceRecommendation    `json:"recommendation"`
	Elasticity     ElasticityData         `json:"elasticity"`
	DemandCurve    []DemandPrediction     `json:"demand_curve"`
	Timestamp      string                 `json:"timestamp"`
}

// AnalyticsSummary 全商品の集計
type AnalyticsSummary struct {
	TotalProducts        int            `json:"total_products"`
	TotalRevenueEstimate float64        `json:"total_revenue_estimate"`
	Categories           map[string]int `json:"categories"`
}

// HealthStatus バックエンドのヘルスチェック結果
type HealthStatus struct {
	Status                string `json:"status"`
	DemandModelLoaded     bool   `json:"demand_model_loaded"`
	ElasticityModelLoaded bool   `json:"elasticity_model_loaded"`
	OptimizationReady     bool   `json:"optimization_ready"`
}
