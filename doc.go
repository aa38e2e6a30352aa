// Package creatures evolves populations of small neural-network-controlled
// agents with NEAT (NeuroEvolution of Augmenting Topologies).
//
// Every creature carries a genome (neat.Dna) describing a directed graph of
// nodes and weighted connections. The genome is evaluated by nn.Network,
// which tolerates recurrent connections. Structural mutations are numbered
// through one shared neat.History so that genomes of different lineages can
// be compared and crossed over gene by gene.
//
// The sim package drives a run: creatures sense each other, move, accumulate
// fitness and die, and their places are filled by offspring of parents drawn
// with explicit fitness sharing across species.
//
// Basic usage:
//
//	// Load configuration
//	cfg, err := neat.LoadConfig("path/to/creatures.ini")
//	if err != nil {
//		log.Fatalf("Error loading config: %v", err)
//	}
//
//	// Create a new simulation
//	s, err := sim.New(cfg)
//	if err != nil {
//		log.Fatalf("Error creating simulation: %v", err)
//	}
//
//	// Run for 6000 ticks
//	if err := s.Run(context.Background(), 6000); err != nil {
//		log.Fatalf("Error running simulation: %v", err)
//	}
//
//	for _, c := range s.Creatures() {
//		info, _ := s.Info(c)
//		fmt.Println(c, info.X, info.Y)
//	}
package creatures
