// Copyright 2019 Google LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     https://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Command nkdump parses a scene or gizmo script and prints the resulting
// node tree.
package main

import (
	"flag"
	"fmt"

	log "github.com/golang/glog"

	"github.com/mwiklund/nkscene/scene"
)

var (
	sceneFlag = flag.String("scene", "", "The path to the .nk or .gizmo file to parse.")
	classFlag = flag.String("class", "", "If set, only dump nodes of this class.")
)

func main() {
	flag.Parse()
	if *sceneFlag == "" {
		log.Exitf("--scene must not be empty.")
	}
	root, err := scene.Parse(*sceneFlag)
	if err != nil {
		log.Exitf("Cannot parse %q: %s", *sceneFlag, err)
	}
	if *classFlag == "" {
		fmt.Print(root.Dump())
		return
	}
	for _, node := range root.AllNodes(*classFlag) {
		fmt.Print(node.Dump())
	}
}
