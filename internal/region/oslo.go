package region

// Stop place ids for the Oslo region, from the national stop register.
const (
	stopOsloS       = "NSR:StopPlace:337"
	stopSkoyen      = "NSR:StopPlace:58366"
	stopLysaker     = "NSR:StopPlace:418"
	stopSandvika    = "NSR:StopPlace:456"
	stopAsker       = "NSR:StopPlace:444"
	stopDrammen     = "NSR:StopPlace:160"
	stopSpikkestad  = "NSR:StopPlace:596"
	stopKongsberg   = "NSR:StopPlace:313"
	stopLillestrom  = "NSR:StopPlace:550"
	stopGardermoen  = "NSR:StopPlace:598"
	stopEidsvoll    = "NSR:StopPlace:165"
	stopKongsvinger = "NSR:StopPlace:315"
	stopSki         = "NSR:StopPlace:588"
	stopMoss        = "NSR:StopPlace:416"
	stopHalden      = "NSR:StopPlace:220"
	stopMysen       = "NSR:StopPlace:425"
	stopRakkestad   = "NSR:StopPlace:514"
	stopSarpsborg   = "NSR:StopPlace:548"
	stopFredrikstad = "NSR:StopPlace:196"
	stopLillehammer = "NSR:StopPlace:367"
	stopSkien       = "NSR:StopPlace:590"
)

var oslo = New(Region{
	ID:   "oslo",
	Name: "Oslo Region",
	Stations: []Station{
		{ID: stopOsloS, Name: "Oslo S", Latitude: 59.9111, Longitude: 10.7550},
		{ID: stopSkoyen, Name: "Skøyen", Latitude: 59.9200, Longitude: 10.6833},
		{ID: stopLysaker, Name: "Lysaker", Latitude: 59.9128, Longitude: 10.6350},
		{ID: stopSandvika, Name: "Sandvika", Latitude: 59.8930, Longitude: 10.5267},
		{ID: stopAsker, Name: "Asker", Latitude: 59.8333, Longitude: 10.4378},
		{ID: stopDrammen, Name: "Drammen", Latitude: 59.7440, Longitude: 10.2045},
		{ID: stopSpikkestad, Name: "Spikkestad", Latitude: 59.9467, Longitude: 10.4100},
		{ID: stopKongsberg, Name: "Kongsberg", Latitude: 59.6686, Longitude: 9.6502},
		{ID: stopLillestrom, Name: "Lillestrøm", Latitude: 59.9550, Longitude: 11.0492},
		{ID: stopGardermoen, Name: "Oslo Lufthavn", Latitude: 60.1939, Longitude: 11.1004},
		{ID: stopEidsvoll, Name: "Eidsvoll", Latitude: 60.3286, Longitude: 11.1581},
		{ID: stopKongsvinger, Name: "Kongsvinger", Latitude: 60.1911, Longitude: 12.0039},
		{ID: stopSki, Name: "Ski", Latitude: 59.7194, Longitude: 10.8389},
		{ID: stopMoss, Name: "Moss", Latitude: 59.4344, Longitude: 10.6572},
		{ID: stopHalden, Name: "Halden", Latitude: 59.1222, Longitude: 11.3875},
		{ID: stopMysen, Name: "Mysen", Latitude: 59.5536, Longitude: 11.3258},
		{ID: stopRakkestad, Name: "Rakkestad", Latitude: 59.4286, Longitude: 11.3450},
		{ID: stopSarpsborg, Name: "Sarpsborg", Latitude: 59.2833, Longitude: 11.1094},
		{ID: stopFredrikstad, Name: "Fredrikstad", Latitude: 59.2181, Longitude: 10.9298},
		{ID: stopLillehammer, Name: "Lillehammer", Latitude: 61.1153, Longitude: 10.4662},
		{ID: stopSkien, Name: "Skien", Latitude: 59.2096, Longitude: 9.6089},
	},
	Routes: []Route{
		{
			Code: "L1", Name: "Spikkestad - Oslo S - Lillestrøm", Type: RouteTypeLocal,
			Stations:    []string{stopSpikkestad, stopAsker, stopOsloS, stopLillestrom, stopEidsvoll},
			Description: "Oslo - Akershus (north-east)",
		},
		{
			Code: "L2", Name: "Ski - Oslo S - Stabekk", Type: RouteTypeLocal,
			Stations:    []string{stopSki, stopOsloS, stopSkoyen},
			Description: "Oslo - Østfold (south-east) - Bærum (west)",
		},
		{
			Code: "L12", Name: "Kongsberg - Oslo S - Eidsvoll", Type: RouteTypeLocal,
			Stations:    []string{stopKongsberg, stopDrammen, stopOsloS, stopEidsvoll},
			Description: "Buskerud - Oslo - Akershus",
		},
		{
			Code: "L13", Name: "Drammen - Oslo S - Dal", Type: RouteTypeLocal,
			Stations:    []string{stopDrammen, stopOsloS},
			Description: "Buskerud - Oslo - Akershus",
		},
		{
			Code: "L14", Name: "Asker - Oslo S - Kongsvinger", Type: RouteTypeLocal,
			Stations:    []string{stopAsker, stopOsloS, stopKongsvinger},
			Description: "Akershus - Oslo - Hedmark",
		},
		{
			Code: "L21", Name: "Stabekk - Oslo S - Moss", Type: RouteTypeLocal,
			Stations:    []string{stopSkoyen, stopOsloS, stopMoss},
			Description: "Bærum - Oslo - Østfold",
		},
		{
			Code: "L22", Name: "Mysen - Oslo S - Stabekk", Type: RouteTypeLocal,
			Stations:    []string{stopMysen, stopOsloS, stopSkoyen},
			Description: "Østfold - Oslo - Bærum",
		},
		{
			Code: "R10", Name: "Drammen - Oslo S - Lillehammer", Type: RouteTypeRegional,
			Stations:    []string{stopDrammen, stopOsloS, stopLillehammer},
			Description: "Buskerud - Oslo - Oppland",
		},
		{
			Code: "R11", Name: "Skien - Oslo S - Eidsvoll", Type: RouteTypeRegional,
			Stations:    []string{stopSkien, stopOsloS, stopEidsvoll},
			Description: "Telemark - Oslo - Akershus",
		},
		{
			Code: "R12", Name: "Kongsberg - Oslo S - Eidsvoll", Type: RouteTypeRegional,
			Stations:    []string{stopKongsberg, stopOsloS, stopEidsvoll},
			Description: "Buskerud - Oslo - Akershus",
		},
		{
			Code: "R13", Name: "Drammen - Oslo S - Dal", Type: RouteTypeRegional,
			Stations:    []string{stopDrammen, stopOsloS},
			Description: "Buskerud - Oslo - Akershus",
		},
		{
			Code: "R14", Name: "Asker - Oslo S - Kongsvinger", Type: RouteTypeRegional,
			Stations:    []string{stopAsker, stopOsloS, stopKongsvinger},
			Description: "Akershus - Oslo - Hedmark",
		},
		{
			Code: "R20", Name: "Oslo S - Ski - Halden", Type: RouteTypeRegional,
			Stations:    []string{stopOsloS, stopSki, stopHalden},
			Description: "Oslo - Østfold",
		},
		{
			Code: "R21", Name: "Oslo S - Moss", Type: RouteTypeRegional,
			Stations:    []string{stopOsloS, stopMoss},
			Description: "Oslo - Østfold",
		},
		{
			Code: "R22", Name: "Oslo S - Mysen - Rakkestad", Type: RouteTypeRegional,
			Stations:    []string{stopOsloS, stopMysen, stopRakkestad},
			Description: "Oslo - Østfold",
		},
		{
			Code: "R23", Name: "Oslo S - Sarpsborg - Fredrikstad", Type: RouteTypeRegional,
			Stations:    []string{stopOsloS, stopSarpsborg, stopFredrikstad},
			Description: "Oslo - Østfold",
		},
		{
			Code: "FLY1", Name: "Oslo S - Oslo Lufthavn", Type: RouteTypeAirportExpress,
			Stations:    []string{stopOsloS, stopGardermoen},
			Description: "Oslo - Akershus (airport)",
		},
		{
			Code: "FLY2", Name: "Drammen - Oslo S - Oslo Lufthavn", Type: RouteTypeAirportExpress,
			Stations:    []string{stopDrammen, stopOsloS, stopGardermoen},
			Description: "Buskerud - Oslo - Akershus (airport)",
		},
	},
	RouteCodes: []string{
		"L1", "L2", "L12", "L13", "L14", "L21", "L22",
		"R10", "R11", "R12", "R13", "R14", "R20", "R21", "R22", "R23",
		"FLY1", "FLY2", "FLY", "Flytoget",
	},
	RelevantPairs: [][2]string{
		{"Asker", "Oslo S"},
		{"Oslo S", "Asker"},
		{"Sandvika", "Asker"},
		{"Asker", "Sandvika"},
		{"Oslo S", "Lillestrøm"},
		{"Lillestrøm", "Oslo S"},
		{"Oslo S", "Oslo Lufthavn"},
		{"Oslo Lufthavn", "Oslo S"},
	},
})

// Oslo returns the built-in Oslo region configuration.
func Oslo() *Region {
	return oslo
}
