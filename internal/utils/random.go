package utils

import (
	"fmt"
	"math/rand"
	"strings"
	"time"

	"github.com/mozillazg/go-pinyin"
	"github.com/smartmes-dev/line-planner/backend/internal/domain"
	"golang.org/x/crypto/bcrypt"
)

var commonSurnames = []string{
	"王", "李", "张", "刘", "陈", "杨", "赵", "黄", "周", "吴",
	"徐", "孙", "胡", "朱", "高", "林", "何", "郭", "马", "罗",
}
var commonNameCharacters = []string{
	"伟", "强", "芳", "敏", "静", "丽", "刚", "杰", "娟", "勇",
	"艳", "涛", "明", "军", "磊", "洋", "霞", "飞", "玲", "超",
	"华", "平", "辉", "梅", "鑫", "龙", "鹏", "玉", "斌", "欣",
}

var itemNameParts = []string{
	"铝合金", "不锈钢", "碳纤维", "聚丙烯", "镀锌", "阳极氧化", "高强度", "精密",
}
var itemNameSuffixes = []string{
	"支架", "外壳", "垫片", "连接件", "轴承座", "端盖", "面板", "法兰",
}
var materialUnits = []string{"件", "千克", "米", "套"}

func GenerateRandomChineseName() string {
	surname := commonSurnames[rand.Intn(len(commonSurnames))]
	nameLength := rand.Intn(2) + 1
	name := ""

	for i := 0; i < nameLength; i++ {
		name += commonNameCharacters[rand.Intn(len(commonNameCharacters))]
	}
	return surname + name
}

var roles = []domain.Role{
	domain.RolePlanner,
	domain.RoleSupervisor,
	domain.RoleAdmin,
}

func GenerateRandomRole() domain.Role {
	return roles[rand.Intn(len(roles))]
}

var digits = "0123456789"

func GenerateUsernameFromChineseName(chineseName string) string {
	pinyinArray := pinyin.LazyConvert(chineseName, nil)
	username := ""

	for _, py := range pinyinArray {
		length := rand.Intn(len(py)) + 1
		username += py[:length]
	}

	digitsLength := rand.Intn(3) + 1
	for i := 0; i < digitsLength; i++ {
		username += string(digits[rand.Intn(len(digits))])
	}

	return username
}

// GenerateCodeFromChineseName 用中文名称的拼音首字母加随机数字生成编码
// 比如 "铝合金支架" -> "LHJZJ-047"
func GenerateCodeFromChineseName(chineseName string) string {
	pinyinArray := pinyin.LazyConvert(chineseName, nil)
	initials := ""
	for _, py := range pinyinArray {
		initials += strings.ToUpper(py[:1])
	}

	return fmt.Sprintf("%s-%03d", initials, rand.Intn(1000))
}

func GenerateRandomUser(password string, emailDomainName string) (*domain.User, error) {
	fullName := GenerateRandomChineseName()
	username := GenerateUsernameFromChineseName(fullName)
	passwordHash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	user := &domain.User{
		Username:     username,
		PasswordHash: string(passwordHash),
		FullName:     fullName,
		Email:        username + "@" + emailDomainName,
		Role:         GenerateRandomRole(),
	}

	return user, nil
}

func GenerateRandomItem() *domain.Item {
	name := itemNameParts[rand.Intn(len(itemNameParts))] + itemNameSuffixes[rand.Intn(len(itemNameSuffixes))]

	return &domain.Item{
		Code: GenerateCodeFromChineseName(name),
		Name: name,
		Unit: materialUnits[rand.Intn(len(materialUnits))],
	}
}

// GenerateRandomLine 随机生成一条产线，对传入物料的一个随机子集具备生产能力
func GenerateRandomLine(seq int, items []*domain.Item) *domain.Line {
	name := fmt.Sprintf("%d号产线", seq)

	capabilities := make([]domain.LineCapability, 0)
	for _, item := range items {
		// 每种物料有一半概率能在这条产线上生产
		if rand.Intn(2) == 0 {
			continue
		}
		capabilities = append(capabilities, domain.LineCapability{
			ItemID:         item.ID,
			HourlyCapacity: int32(rand.Intn(100) + 10),
		})
	}

	return &domain.Line{
		Code:         fmt.Sprintf("LINE-%03d", seq),
		Name:         name,
		Capabilities: capabilities,
	}
}

// GenerateRandomBOMItem 为某种物料随机生成 BOM，原材料从其他物料中抽取
func GenerateRandomBOMItem(item *domain.Item, materials []*domain.Item) *domain.BOMItem {
	components := make([]domain.BOMComponent, 0)
	for _, material := range materials {
		if material.ID == item.ID {
			continue
		}
		if rand.Intn(3) != 0 {
			continue
		}
		components = append(components, domain.BOMComponent{
			MaterialID: material.ID,
			Quantity:   float64(rand.Intn(5)+1) * 0.5,
		})
	}

	return &domain.BOMItem{
		ItemID:     item.ID,
		Components: components,
	}
}

func GenerateRandomDemand(items []*domain.Item) *domain.Demand {
	return &domain.Demand{
		ItemID:   items[rand.Intn(len(items))].ID,
		Quantity: int32(rand.Intn(500) + 50),
		DueAt:    time.Now().Add(time.Duration(rand.Intn(7*24)+24) * time.Hour),
		Priority: int32(rand.Intn(5) + 1),
	}
}

func GenerateRandomInventory(materials []*domain.Item) *domain.Inventory {
	return &domain.Inventory{
		MaterialID: materials[rand.Intn(len(materials))].ID,
		Quantity:   float64(rand.Intn(5000) + 500),
		SnapshotAt: time.Now(),
	}
}

var letters = []rune("abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789!@#$%^&*")

func GenerateRandomPassword(length int) string {
	random_password := make([]rune, length)
	for i := range random_password {
		random_password[i] = letters[rand.Intn(len(letters))]
	}
	return string(random_password)
}
