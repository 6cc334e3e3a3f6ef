/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Command pulpproof renders a cached chapter's styled plaintext (style
// markers interpreted) to a PDF proof, for inspecting stripper/CSS output
// without real hardware.
package main

import (
	"flag"
	"fmt"
	"os"

	"pulpcore/internal/log"
	"pulpcore/internal/proof"
	"pulpcore/internal/version"
)

func main() {
	inPath := flag.String("in", "", "path to a cached chapter text file (CHnnn.TXT)")
	outPath := flag.String("out", "chapter.pdf", "output PDF path")
	title := flag.String("title", "Chapter proof", "PDF document title")
	fontPt := flag.Float64("font", 11, "base body font size in points")
	showVersion := flag.Bool("version", false, "print version and exit")
	flag.Parse()

	if *showVersion {
		fmt.Println(version.String())
		return
	}

	log.Init(log.FromEnv())
	l := log.WithComponent("pulpproof")

	if *inPath == "" {
		fmt.Fprintln(os.Stderr, "pulpproof: -in is required")
		flag.Usage()
		os.Exit(2)
	}

	text, err := os.ReadFile(*inPath)
	if err != nil {
		l.Error("read chapter failed", "err", err)
		os.Exit(1)
	}

	opt := proof.DefaultOptions()
	opt.Title = *title
	opt.BaseFontPt = *fontPt

	if err := proof.RenderChapter(text, opt, *outPath); err != nil {
		l.Error("render failed", "err", err)
		os.Exit(1)
	}

	fmt.Printf("wrote %s\n", *outPath)
}
