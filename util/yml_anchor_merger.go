package util

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// MergeYamlAnchors 把公共锚点拼在流水线配置前面展开别名，再去掉锚点自身的顶层键
func MergeYamlAnchors(anchors string, pipeline string) (string, error) {
	if anchors == "" {
		return pipeline, nil
	}

	var anchorsMap map[string]any
	if err := yaml.Unmarshal([]byte(anchors), &anchorsMap); err != nil {
		return "", fmt.Errorf("parse anchors: %w", err)
	}

	var pipelineKeys map[string]yaml.Node
	if err := yaml.Unmarshal([]byte(pipeline), &pipelineKeys); err == nil {
		for k := range pipelineKeys {
			if _, ok := anchorsMap[k]; ok {
				return "", fmt.Errorf("key %q defined in both anchors and pipeline", k)
			}
		}
	}

	var merged map[string]any
	if err := yaml.Unmarshal([]byte(anchors+"\n"+pipeline), &merged); err != nil {
		return "", fmt.Errorf("expand anchors: %w", err)
	}
	for k := range anchorsMap {
		delete(merged, k)
	}

	mergedBytes, err := yaml.Marshal(merged)
	if err != nil {
		return "", err
	}
	return string(mergedBytes), nil
}
