package protocol

// v527 is the 1.19.0 client. Its table still carries the legacy sound and
// settings packets later versions removed.
func v527() VersionData {
	return VersionData{
		Protocol: 527,
		Label:    "1.19.0",
		Packets: map[string]uint32{
			"Login":                       1,
			"PlayStatus":                  2,
			"ServerToClientHandshake":     3,
			"ClientToServerHandshake":     4,
			"Disconnect":                  5,
			"ResourcePacksInfo":           6,
			"ResourcePackStack":           7,
			"ResourcePackClientResponse":  8,
			"Text":                        9,
			"SetTime":                     10,
			"StartGame":                   11,
			"AddPlayer":                   12,
			"AddActor":                    13,
			"RemoveActor":                 14,
			"AddItemActor":                15,
			"TakeItemActor":               17,
			"MoveActorAbsolute":           18,
			"MovePlayer":                  19,
			"RiderJump":                   20,
			"UpdateBlock":                 21,
			"AddPainting":                 22,
			"TickSync":                    23,
			"LevelSoundEventV1":           24,
			"LevelEvent":                  25,
			"BlockEvent":                  26,
			"ActorEvent":                  27,
			"MobEffect":                   28,
			"UpdateAttributes":            29,
			"InventoryTransaction":        30,
			"MobEquipment":                31,
			"MobArmourEquipment":          32,
			"Interact":                    33,
			"BlockPickRequest":            34,
			"ActorPickRequest":            35,
			"PlayerAction":                36,
			"HurtArmour":                  38,
			"SetActorData":                39,
			"SetActorMotion":              40,
			"SetActorLink":                41,
			"SetHealth":                   42,
			"SetSpawnPosition":            43,
			"Animate":                     44,
			"Respawn":                     45,
			"ContainerOpen":               46,
			"ContainerClose":              47,
			"PlayerHotBar":                48,
			"InventoryContent":            49,
			"InventorySlot":               50,
			"ContainerSetData":            51,
			"CraftingData":                52,
			"CraftingEvent":               53,
			"GUIDataPickItem":             54,
			"AdventureSettings":           55,
			"BlockActorData":              56,
			"PlayerInput":                 57,
			"LevelChunk":                  58,
			"SetCommandsEnabled":          59,
			"SetDifficulty":               60,
			"ChangeDimension":             61,
			"SetPlayerGameType":           62,
			"PlayerList":                  63,
			"SimpleEvent":                 64,
			"Event":                       65,
			"SpawnExperienceOrb":          66,
			"ClientBoundMapItemData":      67,
			"MapInfoRequest":              68,
			"RequestChunkRadius":          69,
			"ChunkRadiusUpdated":          70,
			"ItemFrameDropItem":           71,
			"GameRulesChanged":            72,
			"Camera":                      73,
			"BossEvent":                   74,
			"ShowCredits":                 75,
			"AvailableCommands":           76,
			"CommandRequest":              77,
			"CommandBlockUpdate":          78,
			"CommandOutput":               79,
			"LevelSoundEventV2":           86,
			"NetworkChunkPublisherUpdate": 121,
			"LevelSoundEvent":             123,
			"ClientCacheStatus":           129,
			"NetworkSettings":             143,
			"PlayerAuthInput":             144,
			"ItemStackRequest":            147,
			"ItemStackResponse":           148,
			"ToastRequest":                186,
		},
		Features: map[string]bool{
			"chunk_cache":          true,
			"server_auth_movement": true,
			"item_stack_requests":  true,
			"education_edition":    true,
			"toast_requests":       true,
		},
		Blocks:                Range{Min: 0, Max: 1070},
		Items:                 Range{Min: 0, Max: 1240},
		Entities:              Range{Min: 0, Max: 126},
		ChunkVersions:         Range{Min: 33, Max: 37},
		CanonicalChunkVersion: 37,
		Transport: Transport{
			Encryption:           true,
			Compression:          true,
			CompressionThreshold: 256,
		},
		Equivalents: map[string][]Equivalent{
			"AdventureSettings": {
				{Name: "UpdateAdventureSettings", Fields: map[string]string{
					"noPvM":          "noAttackingMobs",
					"noPvP":          "noAttackingPlayers",
					"immutableWorld": "worldImmutable",
				}},
			},
			"LevelSoundEventV1": {{Name: "LevelSoundEvent"}},
			"LevelSoundEventV2": {{Name: "LevelSoundEvent"}},
		},
		PacketFeatures: map[string]string{
			"ToastRequest": "toast_requests",
		},
		PacketFields: map[string][]string{
			"Text": {"textType", "needsTranslation", "sourceName", "message", "parameters", "xuid", "platformChatId"},
			"AdventureSettings": {
				"flags", "commandPermission", "permissionLevel", "playerUniqueId",
				"noPvM", "noPvP", "immutableWorld", "showNameTags", "autoJump",
			},
		},
	}
}
