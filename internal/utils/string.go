package utils

// UniqueStringSlice 删除重复的字符串，保持原顺序
func UniqueStringSlice(slice []string) []string {
	uniqueSlice := make([]string, 0, len(slice))
	uniqueMap := make(map[string]struct{})
	for _, str := range slice {
		if _, ok := uniqueMap[str]; !ok {
			uniqueMap[str] = struct{}{}
			uniqueSlice = append(uniqueSlice, str)
		}
	}
	return uniqueSlice
}
