package models

import "testing"

func TestTargetDefinitionValidate(t *testing.T) {
	tests := []struct {
		name    string
		def     TargetDefinition
		wantErr bool
	}{
		{
			"valid stat target",
			TargetDefinition{TargetClass: TargetClassStat, TargetName: "total_points", MetricType: MetricNumeric},
			false,
		},
		{
			"valid spread home",
			TargetDefinition{TargetClass: TargetClassMarket, TargetName: "cover", MetricType: MetricBinary, MarketType: MarketSpread, Side: SideHome},
			false,
		},
		{
			"valid total under",
			TargetDefinition{TargetClass: TargetClassMarket, TargetName: "under", MetricType: MetricBinary, MarketType: MarketTotal, Side: SideUnder},
			false,
		},
		{
			"unknown target class",
			TargetDefinition{TargetClass: "prop", TargetName: "x", MetricType: MetricBinary},
			true,
		},
		{
			"missing target name",
			TargetDefinition{TargetClass: TargetClassStat, MetricType: MetricNumeric},
			true,
		},
		{
			"market without market type",
			TargetDefinition{TargetClass: TargetClassMarket, TargetName: "x", MetricType: MetricBinary},
			true,
		},
		{
			"spread with over side",
			TargetDefinition{TargetClass: TargetClassMarket, TargetName: "x", MetricType: MetricBinary, MarketType: MarketSpread, Side: SideOver},
			true,
		},
		{
			"total with home side",
			TargetDefinition{TargetClass: TargetClassMarket, TargetName: "x", MetricType: MetricBinary, MarketType: MarketTotal, Side: SideHome},
			true,
		},
		{
			"moneyline with under side",
			TargetDefinition{TargetClass: TargetClassMarket, TargetName: "x", MetricType: MetricBinary, MarketType: MarketMoneyline, Side: SideUnder},
			true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.def.Validate()
			if (err != nil) != tt.wantErr {
				t.Fatalf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestTargetDefinitionIsMarket(t *testing.T) {
	stat := TargetDefinition{TargetClass: TargetClassStat}
	market := TargetDefinition{TargetClass: TargetClassMarket}
	if stat.IsMarket() || !market.IsMarket() {
		t.Fatal("IsMarket misclassifies")
	}
}
