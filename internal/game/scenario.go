package game

import (
	"fmt"

	"github.com/Garsondee/Pack-Sense/internal/tuning"
)

// demoMap is the stock scenario. Terrain glyphs as ParseGrid; markers:
// V village anchor, H hunter, G guard, K knight, A archer, O wolf den,
// W wolf, d deer. Markers stand on open ground.
var demoMap = []string{
	"################################################################",
	"#..............,,,,,......................................O....#",
	"#..............,,,,,..........~~~~~......................W.W...#",
	"#...G..........,,,,,..........~~~~~~~......................W...#",
	"#..................................~~~~~.........#######.......#",
	"#.....V....H.......................~~~~..........#.....#.......#",
	"#................................................#.....#.......#",
	"#...G.......H..........d.....d...................#.............#",
	"#.....................d...d......................#######.......#",
	"#.........................d.....d..............................#",
	"#####..####............................,,,,,,..................#",
	"#.....................................,,,,,,,..................#",
	"#.....................#####...........,,,,,,...................#",
	"#.....................#...#............................d.......#",
	"#.....................#...#...........................d.d......#",
	"#..............................................................#",
	"#..........~~~~................................................#",
	"#..........~~~~~~..............................................#",
	"#.............~~~~.............K.....K.........................#",
	"#..............................A.....A.........................#",
	"################################################################",
}

// DemoMap returns a copy of the stock scenario map.
func DemoMap() []string {
	return append([]string(nil), demoMap...)
}

// NewDemoWorld builds the stock scenario: a village of hunters and guards, a
// raider band, a wolf pack with its den and two deer herds.
func NewDemoWorld(seed int64, t *tuning.Tuning, opts ...WorldOption) (*World, error) {
	lines := demoMap
	g, err := ParseGrid(lines)
	if err != nil {
		return nil, err
	}
	opts = append([]WorldOption{WithSeed(seed), WithTuning(t)}, opts...)
	w, err := NewWorld(g, opts...)
	if err != nil {
		return nil, err
	}

	var village Pos
	den := 0
	for r, row := range lines {
		for c, ch := range row {
			switch ch {
			case 'V':
				village = Cell{R: r, C: c}.Center()
			case 'O':
				den = w.NewPack(Cell{R: r, C: c})
			}
		}
	}

	for r, row := range lines {
		for c, ch := range row {
			at := Cell{R: r, C: c}
			var spawnErr error
			switch ch {
			case 'H':
				_, spawnErr = w.Spawn(KindHunter, at, WithHome(village))
			case 'G':
				_, spawnErr = w.Spawn(KindGuard, at, WithHome(village))
			case 'K':
				_, spawnErr = w.Spawn(KindKnight, at)
			case 'A':
				_, spawnErr = w.Spawn(KindArcher, at)
			case 'W':
				if den == 0 {
					return nil, fmt.Errorf("demo map: wolf at %v without a den", at)
				}
				_, spawnErr = w.Spawn(KindWolf, at, WithPack(den))
			case 'd':
				_, spawnErr = w.Spawn(KindDeer, at)
			}
			if spawnErr != nil {
				return nil, fmt.Errorf("demo map: %w", spawnErr)
			}
		}
	}
	return w, nil
}
